package config

import "errors"

var errNotPowerOfTwo = errors.New("config: bucket count must be a power of two")
