package manager

import (
	"context"
	"os"
	"path/filepath"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/yaml"

	"kubegroup.dev/kubegroup/pkg/sanitizers"
	"kubegroup.dev/kubegroup/pkg/store"
)

// ExportManager runs one full export of a namespace.
type ExportManager interface {
	Export(ctx context.Context) (*Summary, error)
}

type Options struct {
	Reader    store.Reader
	Namespace string
	DataDir   string

	// Workers bounds how many workload groups are built and written
	// concurrently. It has no correctness effect.
	Workers int

	DryRun   bool
	Flat     bool
	Helmify  bool
	Sanitize bool
	Storage  Writer
}

const DefaultWorkers = 10

// NewExportManager picks the flat or grouped layout.
func NewExportManager(opt Options) ExportManager {
	if opt.Workers <= 0 {
		opt.Workers = DefaultWorkers
	}
	if opt.Storage == nil {
		opt.Storage = NewFileWriter()
	}
	if opt.Flat {
		return flatExportManager{opt: opt}
	}
	return groupedExportManager{opt: opt}
}

type Writer interface {
	Write(string, []byte) error
}

type fileWriter struct{}

func NewFileWriter() Writer {
	return fileWriter{}
}

func (w fileWriter) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0o777)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// storeItem sanitizes one object and writes it as YAML. The store's snapshot
// is never mutated: sanitizing works on a deep copy. Objects that sanitize
// down to bare identity are dropped instead of written.
func storeItem(opt Options, fileName string, obj *unstructured.Unstructured) (bool, error) {
	data := obj.Object
	if opt.Sanitize {
		var err error
		s := sanitizers.NewSanitizer(obj.GetKind())
		data, err = s.Sanitize(obj.DeepCopy().Object)
		if err != nil {
			return false, err
		}
		if sanitizers.IsEmpty(data) {
			return false, nil
		}
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return false, err
	}
	if err := opt.Storage.Write(fileName, out); err != nil {
		return false, err
	}
	return true, nil
}
