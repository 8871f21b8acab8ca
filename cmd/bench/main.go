package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test    string `usage:"name of the test: ALL | REGISTER | PERCOLATE"`
	Base    string `usage:"base URL (empty starts a local server)"`
	N       int64  `usage:"number of operations"`
	Queries int    `usage:"number of registered queries for the percolate test"`
	Workers int    `usage:"number of workers"`
}

var cleanups []func()

func main() {

	defer func() {
		fmt.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:    "ALL",
		Base:    "",
		N:       100_000,
		Queries: 1000,
		Workers: 16,
	}
	goconfig.Read(&c)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestRegister(c)
		TestPercolate(c)
	case "REGISTER":
		TestRegister(c)
	case "PERCOLATE":
		TestPercolate(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}
}
