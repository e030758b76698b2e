package platform

import (
	"context"
	"time"

	"github.com/aretw0/catcare/pkg/backup"
	"github.com/aretw0/catcare/pkg/settings"
)

// New opens the configured store and wires the backup service with the
// settings mirror, so imported settings are visible immediately.
//
//	svc, err := catcare.New("./data", catcare.WithAdapter("sqlite"))
func New(uri string, opts ...Option) (*backup.Service, error) {
	o := applyOptions(opts)

	store, err := open(uri, o)
	if err != nil {
		return nil, err
	}

	mgr := settings.NewManager(store, o.logger)
	mgr.Load(context.Background())

	clock, _ := o.config["clock"].(func() time.Time)
	return backup.NewService(store, backup.Config{
		Logger:     o.logger,
		FilePrefix: o.getString("file_prefix"),
		Clock:      clock,
		Mirrors:    []backup.Mirror{mgr},
		Lenient:    !o.getBool("strict", true),
	}), nil
}

// Settings returns the settings manager wired into svc by New, or a fresh
// one over the service's store when svc was built another way.
func Settings(svc *backup.Service) *settings.Manager {
	for _, m := range svc.Mirrors() {
		if mgr, ok := m.(*settings.Manager); ok {
			return mgr
		}
	}
	mgr := settings.NewManager(svc.Store(), nil)
	mgr.Load(context.Background())
	svc.AddMirror(mgr)
	return mgr
}
