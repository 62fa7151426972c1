package pcdio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/seqsense/pcgol/pc"
)

func Read(r io.Reader) (*pc.PointCloud, error) {
	return pc.Unmarshal(bufio.NewReader(r))
}

func ReadFile(path string) (*pc.PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Write(w io.Writer, pp *pc.PointCloud) error {
	bw := bufio.NewWriter(w)
	if err := pc.Marshal(pp, bw); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes the point cloud to a temporary file and renames it to
// path, so readers never see a partial file.
func WriteFile(path string, pp *pc.PointCloud) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, pp); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
