package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/kelseyhightower/envconfig"
	flag "github.com/spf13/pflag"

	"github.com/skanaujia/defmap/httpapi"
	"github.com/skanaujia/defmap/storage"
)

// Demo server: an in-memory list store with watch support, driven by the
// defmap primitives.  Config comes from KVSERVER_* env vars, flags win.
type Config struct {
	Addr    string `envconfig:"ADDR" default:":8080"`
	GinMode string `envconfig:"GIN_MODE" default:"release"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("kvserver", &cfg); err != nil {
		log.Fatal("Error reading config from env: ", err)
	}
	addr := flag.String("addr", cfg.Addr, "Address to listen on")
	flag.Parse()

	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	httpapi.New(storage.NewMemStore()).Register(router)

	log.Println("kvserver listening on ", *addr)
	log.Fatal(router.Run(*addr))
}
