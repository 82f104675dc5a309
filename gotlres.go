// Package gotlres provides a localization resource cache for applications
// that serve translated messages from per-locale, per-module bundles.
//
// Bundles are fetched lazily from a BundleSource, kept in a bounded TTL+LRU
// cache, and resolved with a fallback chain that never fails the caller:
// an unsupported locale falls back to the default locale, a module that
// cannot be loaded falls back to the default-locale bundle, and a missing
// key yields a mode-specific placeholder. Every fallback is reported to an
// EventHandler instead of being returned as an error.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/gotlres"
//	    "github.com/ZaguanLabs/gotlres/source"
//	)
//
//	func main() {
//	    cfg := gotlres.DefaultConfig()
//	    cfg.SupportedLocales = []string{"en", "fr", "de"}
//
//	    l, err := gotlres.New(cfg, source.NewDirSource("locales"),
//	        gotlres.WithEventHandler(gotlres.LogHandler(logger)),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    l.PreloadCritical(context.Background(), "fr")
//	    fmt.Println(l.T(ctx, "fr", "common", "greeting", gotlres.Params{"name": "Ada"}))
//	}
package gotlres
