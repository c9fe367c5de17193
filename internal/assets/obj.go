// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// OBJ parse errors.
var (
	ErrNoVertices   = errors.New("model has no vertices")
	ErrInvalidIndex = errors.New("vertex index out of range")
)

// ParseOBJ reads a Wavefront OBJ model.
//
// Only geometry is used: "v" vertices, "f" faces and "l" polylines. Normals,
// texture coordinates, groups and materials are skipped. Indices may be
// negative (relative to the vertices read so far).
func ParseOBJ(r io.Reader) (*Mesh, error) {
	mesh := &Mesh{}
	edges := make(map[[2]int]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var v mgl64.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				v[i] = f
			}
			mesh.Vertices = append(mesh.Vertices, v)

		case "f", "l":
			idx, err := parseIndices(fields[1:], len(mesh.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if fields[0] == "f" {
				if len(idx) < 3 {
					return nil, fmt.Errorf("line %d: face needs 3 vertices", lineNo)
				}
				mesh.Faces = append(mesh.Faces, idx)
				for i := range idx {
					addEdge(edges, idx[i], idx[(i+1)%len(idx)])
				}
			} else {
				for i := 0; i+1 < len(idx); i++ {
					addEdge(edges, idx[i], idx[i+1])
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	if len(mesh.Vertices) == 0 {
		return nil, ErrNoVertices
	}

	mesh.Edges = make([][2]int, 0, len(edges))
	for e := range edges {
		mesh.Edges = append(mesh.Edges, e)
	}
	sort.Slice(mesh.Edges, func(i, j int) bool {
		if mesh.Edges[i][0] != mesh.Edges[j][0] {
			return mesh.Edges[i][0] < mesh.Edges[j][0]
		}
		return mesh.Edges[i][1] < mesh.Edges[j][1]
	})
	return mesh, nil
}

// parseIndices converts "7", "7/1", "7//3" or "-1" references to
// zero-based vertex indices.
func parseIndices(refs []string, count int) ([]int, error) {
	out := make([]int, 0, len(refs))
	for _, ref := range refs {
		if i := strings.IndexByte(ref, '/'); i >= 0 {
			ref = ref[:i]
		}
		n, err := strconv.Atoi(ref)
		if err != nil {
			return nil, fmt.Errorf("bad vertex reference %q: %w", ref, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n = count + n
		default:
			return nil, fmt.Errorf("%w: 0", ErrInvalidIndex)
		}
		if n < 0 || n >= count {
			return nil, fmt.Errorf("%w: %s", ErrInvalidIndex, ref)
		}
		out = append(out, n)
	}
	return out, nil
}

func addEdge(edges map[[2]int]struct{}, a, b int) {
	if a == b {
		return
	}
	if a > b {
		a, b = b, a
	}
	edges[[2]int{a, b}] = struct{}{}
}
