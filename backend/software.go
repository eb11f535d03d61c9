package backend

import "github.com/gogpu/hitbox/gpucore"

// Backend name constants.
const (
	// BackendSoftware is the name of the host memory backend.
	BackendSoftware = "software"
	// BackendNative is the name of the Pure Go GPU backend (gogpu/wgpu).
	BackendNative = "native"
)

// SoftwareBackend keeps point buffers in host memory. It is always
// available and is what headless tools and tests use.
type SoftwareBackend struct {
	adapter *gpucore.HostAdapter
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Backend {
		return &SoftwareBackend{}
	})
}

// NewSoftwareBackend creates a new software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init creates the host adapter. Calling Init again keeps the existing one.
func (b *SoftwareBackend) Init() error {
	if b.adapter == nil {
		b.adapter = gpucore.NewHostAdapter()
	}
	return nil
}

// Close drops the host adapter.
func (b *SoftwareBackend) Close() {
	b.adapter = nil
}

// Adapter returns the host adapter, or nil before Init.
func (b *SoftwareBackend) Adapter() gpucore.Adapter {
	if b.adapter == nil {
		return nil
	}
	return b.adapter
}

// HostAdapter returns the concrete adapter for callers that need its
// statistics.
func (b *SoftwareBackend) HostAdapter() *gpucore.HostAdapter {
	return b.adapter
}
