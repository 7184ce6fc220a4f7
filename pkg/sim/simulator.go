package sim

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// Simulator writes generated frames at the configured rate.
type Simulator struct {
	Generator *Generator
	Writer    io.Writer
	// Limit stops after so many frames, 0 runs until canceled.
	Limit uint64
	// Garbled counts frames preceded by garbage.
	Garbled uint64
}

// Name implements Named.
func (s *Simulator) Name() string {
	return "simulator"
}

// WriteNext writes garbage, if any, and the next frame.
func (s *Simulator) WriteNext() error {
	garbage := s.Generator.Garbage()
	if len(garbage) > 0 {
		s.Garbled++
		glog.V(2).Infof("inject % x", garbage)
	}
	f := s.Generator.Next()
	_, err := s.Writer.Write(append(garbage, f.Bytes()...))
	return err
}

// Run implements Runnable.
func (s *Simulator) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / s.Generator.Config.Rate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for s.Limit == 0 || s.Generator.Count() < s.Limit {
		if err := s.WriteNext(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	glog.Infof("%d frames written, %d garbled", s.Generator.Count(), s.Garbled)
	return nil
}
