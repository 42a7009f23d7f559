package importer

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"

	"github.com/piwi3910/SlabRough/internal/surface"
)

// offLines yields the non-empty lines of an OFF file with comments removed.
type offLines struct {
	sc   *bufio.Scanner
	line int
}

func (o *offLines) next() ([]string, error) {
	for o.sc.Scan() {
		o.line++
		text := o.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			return fields, nil
		}
	}
	if err := o.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadOFF decodes a triangulated polyhedron in the OFF text format. Faces
// with other than three corners are rejected.
func ReadOFF(r io.Reader) ([]surface.Triangle3, error) {
	lines := &offLines{sc: bufio.NewScanner(r)}

	fields, err := lines.next()
	if err != nil {
		return nil, errors.Wrap(err, "read off header")
	}
	if fields[0] != "OFF" {
		return nil, errors.Errorf("read off: bad header %q", fields[0])
	}
	counts := fields[1:]
	if len(counts) == 0 {
		if counts, err = lines.next(); err != nil {
			return nil, errors.Wrap(err, "read off counts")
		}
	}
	if len(counts) < 2 {
		return nil, errors.Errorf("read off: line %d: expected vertex and face counts", lines.line)
	}
	nv, err := strconv.Atoi(counts[0])
	if err != nil {
		return nil, errors.Wrap(err, "read off vertex count")
	}
	nf, err := strconv.Atoi(counts[1])
	if err != nil {
		return nil, errors.Wrap(err, "read off face count")
	}

	verts := make([]r3.Vector, nv)
	for i := range verts {
		fields, err := lines.next()
		if err != nil {
			return nil, errors.Wrapf(err, "read off vertex %d", i)
		}
		if len(fields) < 3 {
			return nil, errors.Errorf("read off: line %d: vertex needs 3 coordinates", lines.line)
		}
		xyz, err := parseFloats(fields[:3])
		if err != nil {
			return nil, errors.Wrapf(err, "read off vertex %d", i)
		}
		verts[i] = r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}

	tris := make([]surface.Triangle3, 0, nf)
	for i := 0; i < nf; i++ {
		fields, err := lines.next()
		if err != nil {
			return nil, errors.Wrapf(err, "read off face %d", i)
		}
		if fields[0] != "3" || len(fields) < 4 {
			return nil, errors.Errorf("read off: face %d is not a triangle", i)
		}
		var t surface.Triangle3
		for k := 0; k < 3; k++ {
			idx, err := strconv.Atoi(fields[k+1])
			if err != nil {
				return nil, errors.Wrapf(err, "read off face %d", i)
			}
			if idx < 0 || idx >= nv {
				return nil, errors.Errorf("read off: face %d: vertex %d out of range", i, idx)
			}
			t[k] = verts[idx]
		}
		tris = append(tris, t)
	}
	return tris, nil
}

// ReadSTL decodes a binary or ASCII STL file.
func ReadSTL(r io.Reader) ([]surface.Triangle3, error) {
	in, err := model3d.ReadSTL(r)
	if err != nil {
		return nil, errors.Wrap(err, "read stl")
	}
	tris := make([]surface.Triangle3, len(in))
	for i, t := range in {
		for k, c := range t {
			tris[i][k] = r3.Vector{X: c.X, Y: c.Y, Z: c.Z}
		}
	}
	return tris, nil
}

// LoadMesh reads an .off or .stl file and builds its mesh.
func LoadMesh(path string) (*surface.Mesh, error) {
	var read func(io.Reader) ([]surface.Triangle3, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".off":
		read = ReadOFF
	case ".stl":
		read = ReadSTL
	default:
		return nil, errors.Errorf("load mesh: unsupported file type %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load mesh")
	}
	defer f.Close()

	tris, err := read(f)
	if err != nil {
		return nil, errors.Wrap(err, "load mesh "+filepath.Base(path))
	}
	m, err := surface.Build(tris)
	if err != nil {
		return nil, errors.Wrap(err, "load mesh "+filepath.Base(path))
	}
	return m, nil
}
