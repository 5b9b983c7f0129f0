package configuration

type Config struct {
	// MaxBlockSize bounds how many bytes of a multipart upload are
	// buffered before the request is rejected.
	MaxBlockSize    int64
	MultipartFields []string
}

func Default() Config {
	return Config{
		MaxBlockSize:    1 << 20,
		MultipartFields: []string{"data", "file"},
	}
}
