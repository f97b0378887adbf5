// Package scene builds synthetic Objects-type documents for demos and tests.
package scene

import (
	"errors"
	"fmt"
	"time"

	"admstream/internal/adm"
	"admstream/internal/config"
)

// Options describes a scene. Every object starts at 0 and lasts Duration;
// each channel format carries one block per BlockInterval.
type Options struct {
	Objects       int
	Duration      time.Duration
	BlockInterval time.Duration
	// ProgrammeEnd is stored on the programme when positive.
	ProgrammeEnd time.Duration
	Language     string
}

// OptionsFromConfig maps the [scene] section onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Objects:       cfg.Scene.Objects,
		Duration:      cfg.SceneDuration(),
		BlockInterval: cfg.BlockInterval(),
		ProgrammeEnd:  cfg.ProgrammeEnd(),
		Language:      cfg.Scene.Language,
	}
}

// Build returns a document with one programme, one content and opts.Objects
// objects, each wired through a pack, channel, stream, track and track UID.
func Build(opts Options) (*adm.Document, error) {
	if opts.Objects <= 0 {
		return nil, errors.New("scene: objects must be positive")
	}
	if opts.Duration <= 0 || opts.BlockInterval <= 0 {
		return nil, errors.New("scene: duration and block interval must be positive")
	}

	doc := adm.NewDocument()
	programme := adm.NewProgramme("Programme")
	content := adm.NewContent("Content")
	if opts.ProgrammeEnd > 0 {
		programme.SetEnd(opts.ProgrammeEnd)
	}
	if opts.Language != "" {
		if err := programme.SetLanguage(opts.Language); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
		if err := content.SetLanguage(opts.Language); err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	if _, err := doc.Add(programme); err != nil {
		return nil, fmt.Errorf("scene: add programme: %w", err)
	}
	if err := programme.AddContent(content); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	for i := range opts.Objects {
		if err := addObject(content, i, opts); err != nil {
			return nil, fmt.Errorf("scene: object %d: %w", i+1, err)
		}
	}
	return doc, nil
}

func addObject(content *adm.Content, index int, opts Options) error {
	name := fmt.Sprintf("Object %d", index+1)
	object := adm.NewObject(name)
	object.SetStart(0)
	object.SetDuration(opts.Duration)

	pack := adm.NewPackFormat(name, adm.TypeObjects)
	channel := adm.NewChannelFormat(name, adm.TypeObjects)
	stream := adm.NewStreamFormat(name, adm.TypeObjects)
	track := adm.NewTrackFormat(name, adm.TypeObjects)
	uid := adm.NewTrackUID()

	// Objects are spread evenly around the listener and sweep 90 degrees
	// over the scene.
	base := float64(index) * 360 / float64(opts.Objects)
	steps := int((opts.Duration + opts.BlockInterval - 1) / opts.BlockInterval)
	for step := range steps {
		start := time.Duration(step) * opts.BlockInterval
		block := adm.NewBlockFormat(start)
		block.SetDuration(min(opts.BlockInterval, opts.Duration-start))
		block.SetPosition(adm.Position{
			Azimuth:  wrapAzimuth(base + 90*float64(step)/float64(steps)),
			Distance: 1,
		})
		if err := channel.AddBlockFormat(block); err != nil {
			return err
		}
	}

	if err := content.AddObject(object); err != nil {
		return err
	}
	for _, link := range []func() error{
		func() error { return object.AddPackFormat(pack) },
		func() error { return pack.AddChannelFormat(channel) },
		func() error { return stream.SetChannelFormat(channel) },
		func() error { return track.SetStreamFormat(stream) },
		func() error { return stream.AddTrackFormat(track) },
		func() error { return uid.SetTrackFormat(track) },
		func() error { return uid.SetPackFormat(pack) },
		func() error { return object.AddTrackUID(uid) },
	} {
		if err := link(); err != nil {
			return err
		}
	}
	return nil
}

func wrapAzimuth(az float64) float64 {
	for az > 180 {
		az -= 360
	}
	return az
}
