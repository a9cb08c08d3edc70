package loader

import (
	"fmt"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/texture"
)

// LoadEnvironment decodes an environment image and creates its resource.
func LoadEnvironment(dev backend.Device, data []byte, mimeType string) (backend.EnvironmentHandle, error) {
	pixels, err := texture.Decode(data, mimeType)
	if err != nil {
		return 0, fmt.Errorf("%w: environment: %v", ErrImageDecode, err)
	}
	h, err := dev.CreateEnvironment(pixels)
	if err != nil {
		return 0, fmt.Errorf("environment: %w", err)
	}
	return h, nil
}
