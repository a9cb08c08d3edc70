package loader

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
	"github.com/Faultbox/midgard-scene/internal/engine/texture"
	"github.com/Faultbox/midgard-scene/pkg/document"
)

// loadImages decodes each distinct document image once. Images sharing a
// non-empty URI collapse onto the first.
func (l *loadState) loadImages() error {
	l.imageOf = make([]int, len(l.doc.Images))
	byURI := make(map[string]int)

	for i := range l.doc.Images {
		di := &l.doc.Images[i]
		if di.URI != "" {
			if idx, ok := byURI[di.URI]; ok {
				l.imageOf[i] = idx
				continue
			}
		}

		img := scene.Image{Name: di.Name, URI: di.URI}
		if !l.opts.DontLoadImages {
			if len(di.Data) == 0 {
				l.log.Warn("image has no data, using placeholder",
					zap.Int("image", i), zap.String("uri", di.URI))
				l.imageOf[i] = -1
				continue
			}
			pixels, err := texture.Decode(di.Data, di.MimeType)
			if err != nil {
				return fmt.Errorf("%w: image %d (%s): %v", ErrImageDecode, i, di.URI, err)
			}
			if err := l.createImage(&img, pixels); err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
		}

		l.imageOf[i] = len(l.m.Images)
		l.m.Images = append(l.m.Images, img)
		if di.URI != "" {
			byURI[di.URI] = l.imageOf[i]
		}
	}

	if d := l.opts.DefaultImage; d >= 0 && d < len(l.m.Images) {
		l.placeholder = d
	}
	return nil
}

// createImage uploads pixels and records them on img.
func (l *loadState) createImage(img *scene.Image, pixels *image.RGBA) error {
	h, err := l.dev.CreateImage(pixels)
	if err != nil {
		return err
	}
	img.Pixels = pixels
	img.Resource = h
	return nil
}

// placeholderImage returns the image used for empty texture slots, adding
// a white 1x1 image the first time one is needed.
func (l *loadState) placeholderImage() (int, error) {
	if l.placeholder >= 0 {
		return l.placeholder, nil
	}
	img := scene.Image{Name: "placeholder", Placeholder: true}
	if err := l.createImage(&img, texture.Solid(texture.White)); err != nil {
		return 0, fmt.Errorf("placeholder image: %w", err)
	}
	l.placeholder = len(l.m.Images)
	l.m.Images = append(l.m.Images, img)
	return l.placeholder, nil
}

func (l *loadState) loadTextures() error {
	l.m.Textures = make([]scene.Texture, len(l.doc.Textures))
	for i, dt := range l.doc.Textures {
		if dt.Source < 0 || dt.Source >= len(l.imageOf) {
			return fmt.Errorf("%w: texture %d uses image %d (have %d)", ErrImageOutOfRange, i, dt.Source, len(l.imageOf))
		}
		idx := l.imageOf[dt.Source]
		if idx < 0 {
			p, err := l.placeholderImage()
			if err != nil {
				return err
			}
			idx = p
		}
		l.m.Textures[i] = scene.Texture{Image: idx}
	}
	return nil
}

// loadMaterials resolves every texture slot to an image index.
func (l *loadState) loadMaterials() error {
	l.m.Materials = make([]scene.Material, 0, len(l.doc.Materials)+1)
	for i := range l.doc.Materials {
		dm := &l.doc.Materials[i]
		mat := scene.Material{
			Name:            dm.Name,
			BaseColorFactor: mgl32.Vec4{1, 1, 1, 1},
		}
		if dm.BaseColorFactor != nil {
			mat.BaseColorFactor = mgl32.Vec4(*dm.BaseColorFactor)
		}

		slots := []struct {
			texture int
			dst     *int
			name    string
		}{
			{dm.BaseColorTexture, &mat.BaseColorImage, "base color"},
			{dm.NormalTexture, &mat.NormalImage, "normal"},
			{dm.OcclusionTexture, &mat.OcclusionImage, "occlusion"},
			{dm.MetallicRoughnessTexture, &mat.MetallicRoughnessImage, "metallic roughness"},
		}
		for _, s := range slots {
			idx, err := l.resolveSlot(i, s.texture, s.name)
			if err != nil {
				return err
			}
			*s.dst = idx
		}
		l.m.Materials = append(l.m.Materials, mat)
	}
	return nil
}

func (l *loadState) resolveSlot(material, tex int, slot string) (int, error) {
	if tex == document.NoIndex {
		l.log.Debug("empty texture slot, using placeholder",
			zap.Int("material", material), zap.String("slot", slot))
		return l.placeholderImage()
	}
	if tex < 0 || tex >= len(l.m.Textures) {
		return 0, fmt.Errorf("%w: material %d %s slot uses texture %d (have %d)",
			ErrTextureOutOfRange, material, slot, tex, len(l.m.Textures))
	}
	return l.m.Textures[tex].Image, nil
}

// materialFor returns the model material index for a primitive's material
// reference, adding a default material for primitives that name none.
func (l *loadState) materialFor(ref int) (int, error) {
	if ref != document.NoIndex {
		if ref < 0 || ref >= len(l.doc.Materials) {
			return 0, fmt.Errorf("%w: %d (have %d)", ErrMaterialOutOfRange, ref, len(l.doc.Materials))
		}
		return ref, nil
	}
	if l.defaultMaterial >= 0 {
		return l.defaultMaterial, nil
	}

	p, err := l.placeholderImage()
	if err != nil {
		return 0, err
	}
	l.defaultMaterial = len(l.m.Materials)
	l.m.Materials = append(l.m.Materials, scene.Material{
		Name:                   "default",
		BaseColorFactor:        mgl32.Vec4{1, 1, 1, 1},
		BaseColorImage:         p,
		NormalImage:            p,
		OcclusionImage:         p,
		MetallicRoughnessImage: p,
	})
	return l.defaultMaterial, nil
}

// createMaterials creates a backend material for every resolved material.
func (l *loadState) createMaterials() error {
	for i := range l.m.Materials {
		mat := &l.m.Materials[i]
		slots := mat.Slots()
		desc := backend.MaterialDesc{
			BaseColorFactor:   mat.BaseColorFactor,
			BaseColor:         l.m.Images[slots[0]].Resource,
			Normal:            l.m.Images[slots[1]].Resource,
			Occlusion:         l.m.Images[slots[2]].Resource,
			MetallicRoughness: l.m.Images[slots[3]].Resource,
		}
		h, err := l.dev.CreateMaterial(desc)
		if err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		mat.Resource = h
	}
	return nil
}
