package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores files under Root/<category>/<name>.
type Disk struct {
	Root string
}

func (d *Disk) dir(category string) string { return filepath.Join(d.Root, category) }

// Put writes the file through a temp file and a rename so readers never see a partial upload.
func (d *Disk) Put(category, name string, data []byte) error {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("storage: bad file name %q", name)
	}
	dir := d.dir(category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, name))
}

// Ensure creates the directory of every category up front.
func (d *Disk) Ensure(categories ...string) error {
	for _, c := range categories {
		if err := os.MkdirAll(d.dir(c), 0o755); err != nil {
			return err
		}
	}
	return nil
}
