package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Dir               string `usage:"data directory"`
	Shards            int    `usage:"default number of shards per index"`
	Replicas          int    `usage:"default number of replicas per shard"`
	PercolateTimeout  int    `usage:"percolate timeout in seconds"`
	EnableCompression bool   `usage:"enable gzip compression"`
	Version           bool   `usage:"show version and exit"`
	ShowBanner        bool   `usage:"show big banner"`
	ShowConfig        bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:         ":8080",
		Dir:              "data",
		Shards:           1,
		Replicas:         0,
		PercolateTimeout: 10,
		ShowBanner:       true,
	}
}
