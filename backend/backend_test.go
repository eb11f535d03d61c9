package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/hitbox/gpucore"
)

func TestSoftwareBackendName(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestSoftwareBackendInit(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Adapter() != nil {
		t.Error("Adapter() before Init should be nil")
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	first := b.HostAdapter()
	if first == nil {
		t.Fatal("HostAdapter() nil after Init")
	}
	if err := b.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if b.HostAdapter() != first {
		t.Error("second Init() replaced the adapter")
	}
	b.Close()
}

func TestSoftwareBackendAdapter(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer b.Close()

	id, err := b.Adapter().CreateBuffer("points", 16, gpucore.BufferUsageVertex|gpucore.BufferUsageCopyDst)
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if b.HostAdapter().BufferCount() != 1 {
		t.Errorf("BufferCount() = %d, want 1", b.HostAdapter().BufferCount())
	}
	b.Adapter().DestroyBuffer(id)
}

func TestSoftwareBackendClose(t *testing.T) {
	b := NewSoftwareBackend()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	b.Close()
	if b.Adapter() != nil {
		t.Error("Adapter() should be nil after Close")
	}
	// Close twice should not panic
	b.Close()
}

func TestRegistryRegisterAndGet(t *testing.T) {
	// Software backend is auto-registered via init()
	if !IsRegistered("software") {
		t.Error("software backend should be auto-registered")
	}

	b := Get("software")
	if b == nil {
		t.Fatal("Get(software) returned nil")
	}
	if b.Name() != "software" {
		t.Errorf("Get(software).Name() = %q, want %q", b.Name(), "software")
	}
}

func TestRegistryGetUnregistered(t *testing.T) {
	if b := Get("nonexistent"); b != nil {
		t.Error("Get(nonexistent) should return nil")
	}
}

func TestRegistryAvailable(t *testing.T) {
	found := false
	for _, name := range Available() {
		if name == "software" {
			found = true
			break
		}
	}
	if !found {
		t.Error("Available() should include 'software'")
	}
}

func TestRegistryDefault(t *testing.T) {
	b := Default()
	if b == nil {
		t.Fatal("Default() returned nil")
	}
	// native is not linked into this package's tests
	if b.Name() != "software" {
		t.Errorf("Default().Name() = %q, want software", b.Name())
	}
}

func TestOpen(t *testing.T) {
	b, err := Open("software")
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	defer b.Close()
	if b.Adapter() == nil {
		t.Error("Open(software) returned an uninitialised backend")
	}

	if _, err := Open("nonexistent"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(nonexistent) error = %v, want ErrBackendNotAvailable", err)
	}
}

// failingBackend never initialises.
type failingBackend struct{}

var errNoDevice = errors.New("no device")

func (failingBackend) Name() string             { return BackendNative }
func (failingBackend) Init() error              { return errNoDevice }
func (failingBackend) Close()                   {}
func (failingBackend) Adapter() gpucore.Adapter { return nil }

func TestInitDefaultFallsBack(t *testing.T) {
	Register(BackendNative, func() Backend { return failingBackend{} })
	defer Unregister(BackendNative)

	b, err := InitDefault()
	if err != nil {
		t.Fatalf("InitDefault() error = %v", err)
	}
	defer b.Close()
	if b.Name() != "software" {
		t.Errorf("InitDefault() = %q, want fallback to software", b.Name())
	}

	if _, err := Open(BackendNative); !errors.Is(err, errNoDevice) {
		t.Errorf("Open(native) error = %v, want errNoDevice", err)
	}
}

func TestInitDefaultEmptyRegistry(t *testing.T) {
	Unregister(BackendSoftware)
	defer Register(BackendSoftware, func() Backend { return &SoftwareBackend{} })

	if _, err := InitDefault(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("InitDefault() error = %v, want ErrBackendNotAvailable", err)
	}
	if b := Default(); b != nil {
		t.Errorf("Default() = %v, want nil", b)
	}
}

func TestRegistryUnregister(t *testing.T) {
	Register("test-backend", func() Backend { return &SoftwareBackend{} })

	if !IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}

	Unregister("test-backend")

	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

func TestOrderedNames(t *testing.T) {
	Register("zz-test", func() Backend { return &SoftwareBackend{} })
	Register(BackendNative, func() Backend { return failingBackend{} })
	defer Unregister("zz-test")
	defer Unregister(BackendNative)

	names := orderedNames()
	if len(names) < 3 {
		t.Fatalf("orderedNames() = %v", names)
	}
	if names[0] != BackendNative || names[1] != BackendSoftware {
		t.Errorf("orderedNames() = %v, want priority backends first", names)
	}
	if names[len(names)-1] != "zz-test" {
		t.Errorf("orderedNames() = %v, want zz-test last", names)
	}
}
