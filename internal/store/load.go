package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
	"github.com/ulikunitz/xz"
	"sigs.k8s.io/yaml"
)

// Load reads a result store file. Files ending in .gz, .zst or .xz are
// decompressed first. The content may be JSON or YAML.
func Load(path string) (*Data, error) {
	log := logger.Logger()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}
	defer f.Close()

	r, closeFn, err := decompress(filepath.Base(path), bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("opening result store %s: %w", path, err)
	}
	defer closeFn()

	data, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding result store %s: %w", path, err)
	}
	data.Normalize()

	log.Infof("loaded result store %s: %d environments, %d workloads", path, len(data.Envs), len(data.Workloads))
	return data, nil
}

func decompress(name string, r io.Reader) (io.Reader, func(), error) {
	noop := func() {}
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating gzip reader: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating zstd reader: %w", err)
		}
		return dec, dec.Close, nil
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, noop, fmt.Errorf("creating xz reader: %w", err)
		}
		return xzr, noop, nil
	default:
		return r, noop, nil
	}
}

// Decode parses a result store from JSON or YAML. It does not normalize.
func Decode(r io.Reader) (*Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	data := NewData()
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		err = json.Unmarshal(trimmed, data)
	} else {
		err = yaml.Unmarshal(trimmed, data)
	}
	if err != nil {
		return nil, errs.Data("result store", err)
	}
	if data.Pkgs == nil {
		data.Pkgs = map[string]map[string]map[string]*Package{}
	}
	if data.Envs == nil {
		data.Envs = map[string]*Env{}
	}
	if data.Workloads == nil {
		data.Workloads = map[string]*Workload{}
	}
	return data, nil
}

// VerifySignature checks an armored detached OpenPGP signature of the file at
// dataPath against an armored public keyring.
func VerifySignature(dataPath, sigPath, keyringPath string) error {
	log := logger.Logger()

	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return fmt.Errorf("opening keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		return fmt.Errorf("reading keyring %s: %w", keyringPath, err)
	}

	dataFile, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer dataFile.Close()

	sigFile, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("opening signature: %w", err)
	}
	defer sigFile.Close()

	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, dataFile, sigFile, nil)
	if err != nil {
		return errs.Data(dataPath, fmt.Errorf("signature verification failed: %w", err))
	}
	for name := range signer.Identities {
		log.Infof("result store %s signed by %s", dataPath, name)
		break
	}
	return nil
}
