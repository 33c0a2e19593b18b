package config

import (
	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// Hashsum calculates xxhash non-cryptographic hash suitable for checking the equality
func Hashsum(args ...interface{}) (uint64, error) {
	h := xxhash.New()
	for _, arg := range args {
		s, err := yaml.Marshal(arg)
		if err != nil {
			return 0, err
		}
		if _, err := h.Write(s); err != nil {
			return 0, err
		}
	}
	return h.Sum64(), nil
}
