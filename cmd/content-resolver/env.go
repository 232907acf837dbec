package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/query"
	"github.com/open-edge-platform/content-resolver/internal/store"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

// Output format flags shared by every command printing results
var (
	outFormat  string = "text" // "text" | "json"
	prettyJSON bool   = true
)

// loadEngine loads the configuration documents and the result store named by
// the settings, checks that they agree, and returns a query engine over them.
func loadEngine() (*query.Engine, error) {
	log := logger.Logger()

	configDir, err := settings.ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}
	dataFile, err := settings.DataFile()
	if err != nil {
		return nil, fmt.Errorf("resolving result store: %w", err)
	}

	cfgs, err := config.LoadDirectory(configDir, settings.AllowedArches())
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	log.Infof("loaded configuration from %s: %d workloads, %d environments, %d views",
		configDir, len(cfgs.Workloads), len(cfgs.Envs), len(cfgs.Views))

	if settings.HasSignature() {
		gc := settings.GetConfig()
		if err := store.VerifySignature(dataFile, gc.SignatureFile, gc.KeyringFile); err != nil {
			return nil, err
		}
		log.Infof("signature of %s verified", dataFile)
	}

	data, err := store.Load(dataFile)
	if err != nil {
		return nil, err
	}
	if err := data.Validate(cfgs); err != nil {
		return nil, err
	}
	return query.New(data, cfgs, settings.AllowedArches()), nil
}

func checkFormat() error {
	switch strings.ToLower(outFormat) {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid --format %q (expected text|json)", outFormat)
	}
}

func isJSON() bool {
	return strings.ToLower(outFormat) == "json"
}

func writeJSON(out io.Writer, v any, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, _ = fmt.Fprintln(out, string(b))
	return nil
}

// writeList prints one item per line, or a JSON array.
func writeList(out io.Writer, items []string) error {
	if isJSON() {
		if items == nil {
			items = []string{}
		}
		return writeJSON(out, items, prettyJSON)
	}
	for _, item := range items {
		fmt.Fprintln(out, item)
	}
	return nil
}
