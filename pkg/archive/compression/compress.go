package compression

import (
	"github.com/klauspost/compress/zstd"
)

// Config represents common compression-related configuration.
type Config struct {
	Enabled bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Init initializes compression routines.
func (c *Config) Init() error {
	var err error

	if c.Enabled {
		c.encoder, err = zstd.NewWriter(nil)
		if err != nil {
			return err
		}
	}

	c.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return err
	}

	return nil
}

// Decompress decompresses data produced by Compress with compression
// enabled. Callers track whether data is compressed.
func (c *Config) Decompress(data []byte) ([]byte, error) {
	return c.decoder.DecodeAll(data, nil)
}

// Compress compresses data if compression is enabled
// and returns data untouched otherwise.
func (c *Config) Compress(data []byte) []byte {
	if c == nil || !c.Enabled {
		return data
	}
	maxSize := c.encoder.MaxEncodedSize(len(data))
	return c.encoder.EncodeAll(data, make([]byte, 0, maxSize))
}

// Close closes encoder and decoder, returns any error occurred.
func (c *Config) Close() error {
	var err error
	if c.encoder != nil {
		err = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
	return err
}
