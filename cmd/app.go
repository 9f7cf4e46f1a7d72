package cmd

import (
	"content-pipeline/content"
	"content-pipeline/core/config"
	"content-pipeline/core/cook"
	"content-pipeline/core/vfs"
	"content-pipeline/feature/script"
	"content-pipeline/feature/texture"

	"go.uber.org/zap"
)

// app is the wired pipeline shared by the load and serve commands.
type app struct {
	fs       vfs.FileSystem
	network  *vfs.Network
	cooker   *cook.Manager
	loads    *content.Manager
	textures *texture.Manager
	scripts  *script.Manager
}

func newApp(cfg *config.Config, dev texture.Device, logg *zap.Logger) (*app, error) {
	a := &app{}

	// Content file system: local root, optionally layered under the remote
	// bucket.
	if cfg.VFS.Network.Enabled {
		client, err := vfs.NewObjectClient(cfg.VFS.Network)
		if err != nil {
			return nil, err
		}
		a.network = vfs.NewNetwork(client, cfg.VFS.Network.Bucket, cfg.VFS.CacheDir, logg)
		a.fs = a.network
	} else {
		a.fs = vfs.NewLocal(cfg.VFS.Root)
	}

	if cfg.Cook.Enabled {
		var db *cook.Database
		if cfg.Cook.Database != "" {
			conn, err := cook.OpenDatabase(cfg.Cook.Database)
			if err != nil {
				logg.Warn("cook database unavailable, cooking without it", zap.Error(err))
			} else {
				db = conn
			}
		}
		a.cooker = cook.NewManager(cfg.Cook, vfs.NewLocal(cfg.VFS.SourceRoot), a.fs, db, logg)
		a.cooker.Register(".tex", texture.CookRule())
		a.cooker.Register(".luac", script.CookRule())
	}

	a.loads = content.NewManager(cfg.Content, logg)

	var cooker cook.Cooker = cook.Disabled{}
	if a.cooker != nil {
		cooker = a.cooker
	}
	a.textures = texture.NewManager(cfg.Texture, a.loads, a.fs, cooker, dev, logg)
	a.scripts = script.NewManager(cfg.Script, a.loads, a.fs, cooker, logg)
	return a, nil
}

func (a *app) Close() error {
	return a.loads.Close()
}
