package geom

// StripOrder returns the vertex indices of the n-2 triangles of a strip
// with n vertices. Every odd triangle has its first two vertices swapped so
// all triangles share the winding of the first.
func StripOrder(n int) [][3]int {
	if n < 3 {
		return nil
	}

	order := make([][3]int, n-2)
	for i := range order {
		if i%2 == 0 {
			order[i] = [3]int{i, i + 1, i + 2}
		} else {
			order[i] = [3]int{i + 1, i, i + 2}
		}
	}

	return order
}

// Triangulate splits s into triangles in [StripOrder]. Each triangle
// carries the attributes of s.
func Triangulate(s *Strip) []Triangle {
	order := StripOrder(len(s.Vertices))
	tris := make([]Triangle, len(order))

	for i, o := range order {
		tris[i].Meta = s.Meta
		for j, k := range o {
			tris[i].Vertices[j] = s.Vertices[k]
		}
	}

	return tris
}
