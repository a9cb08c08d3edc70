package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/animation"
	"github.com/Faultbox/midgard-scene/pkg/document"
)

// loadAnimations converts document animations. Sampler outputs are widened
// to four components with w = 0 for vectors.
func (l *loadState) loadAnimations() ([]animation.Animation, error) {
	if len(l.doc.Animations) == 0 {
		return nil, nil
	}
	if l.opts.PreTransformVertices {
		l.log.Warn("animations act on baked vertices when node transforms are pre-applied")
	}

	anims := make([]animation.Animation, 0, len(l.doc.Animations))
	for a := range l.doc.Animations {
		da := &l.doc.Animations[a]
		anim := animation.Animation{Name: da.Name}
		if anim.Name == "" {
			anim.Name = fmt.Sprintf("animation_%d", a)
		}

		for s := range da.Samplers {
			sampler, err := l.convertSampler(&da.Samplers[s])
			if err != nil {
				return nil, fmt.Errorf("animation %d sampler %d: %w", a, s, err)
			}
			anim.Samplers = append(anim.Samplers, sampler)
		}

		for c, dc := range da.Channels {
			ch, ok, err := l.convertChannel(dc, len(anim.Samplers))
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", a, c, err)
			}
			if !ok {
				l.log.Warn("unsupported animation channel skipped",
					zap.String("animation", anim.Name),
					zap.Int("channel", c),
					zap.String("path", dc.TargetPath))
				continue
			}
			anim.Channels = append(anim.Channels, ch)
		}

		anim.ComputeRange()
		anims = append(anims, anim)
	}
	return anims, nil
}

func (l *loadState) convertSampler(ds *document.AnimationSampler) (animation.Sampler, error) {
	in, err := l.accessor(ds.Input)
	if err != nil {
		return animation.Sampler{}, fmt.Errorf("input: %w", err)
	}
	out, err := l.accessor(ds.Output)
	if err != nil {
		return animation.Sampler{}, fmt.Errorf("output: %w", err)
	}

	s := animation.Sampler{
		Interpolation: animation.ParseInterpolation(ds.Interpolation),
		Inputs:        append([]float32(nil), in.Floats...),
	}
	if s.Interpolation == animation.Unknown {
		l.log.Warn("unknown interpolation, sampling as STEP", zap.String("interpolation", ds.Interpolation))
	}

	for i := 0; i < out.Count; i++ {
		v := out.Vec(i)
		if v == nil {
			break
		}
		var w mgl32.Vec4
		copy(w[:], v)
		s.Outputs = append(s.Outputs, w)
	}
	return s, nil
}

// convertChannel validates a channel. The second result is false for
// channels that are skipped rather than rejected.
func (l *loadState) convertChannel(dc document.AnimationChannel, samplers int) (animation.Channel, bool, error) {
	if dc.Sampler < 0 || dc.Sampler >= samplers {
		return animation.Channel{}, false, fmt.Errorf("%w: %d (have %d)", ErrSamplerOutOfRange, dc.Sampler, samplers)
	}
	if dc.TargetNode == document.NoIndex {
		return animation.Channel{}, false, nil
	}
	if dc.TargetNode < 0 || dc.TargetNode >= len(l.graph.Nodes) {
		return animation.Channel{}, false, fmt.Errorf("%w: %d (have %d)", ErrChannelNodeOutOfRange, dc.TargetNode, len(l.graph.Nodes))
	}

	path, ok := animation.ParsePath(dc.TargetPath)
	if !ok {
		return animation.Channel{}, false, nil
	}
	if l.doc.Nodes[dc.TargetNode].Matrix != nil {
		return animation.Channel{}, false, fmt.Errorf("%w: node %d", ErrAnimatedMatrixNode, dc.TargetNode)
	}
	return animation.Channel{Path: path, Node: dc.TargetNode, Sampler: dc.Sampler}, true, nil
}
