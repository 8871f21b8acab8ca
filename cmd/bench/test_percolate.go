package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tidwall/sjson"
)

func TestPercolate(c Config) {

	if c.Base == "" {
		start, stop := CreateServer(&c)
		defer stop()
		go start()
		time.Sleep(100 * time.Millisecond)
	}

	index := CreateIndex(c.Base, 2)

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     1024,
			MaxIdleConnsPerHost: 1024,
			MaxIdleConns:        1024,
		},
	}

	// Fill the registry first, then measure matching throughput against it.
	for i := 0; i < c.Queries; i++ {
		body, _ := sjson.SetBytes([]byte(`{"query":{"term":{}}}`), "query.term.field1", "value-"+strconv.Itoa(i%100))
		req, _ := http.NewRequest("PUT", c.Base+"/"+index+"/_percolator/q"+strconv.Itoa(i), bytes.NewReader(body))
		resp, err := client.Do(req)
		if err != nil {
			fmt.Println("ERROR: register query:", err.Error())
			os.Exit(3)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	items := c.N

	t0 := time.Now()
	Parallel(c.Workers, func() {
		for {
			n := atomic.AddInt64(&items, -1)
			if n < 0 {
				break
			}

			body, _ := sjson.SetBytes([]byte(`{"doc":{}}`), "doc.field1", "value-"+strconv.FormatInt(n%100, 10))

			req, err := http.NewRequest("POST", c.Base+"/"+index+"/doc/_percolate", bytes.NewReader(body))
			if err != nil {
				fmt.Println("ERROR: new request:", err.Error())
				os.Exit(3)
			}

			resp, err := client.Do(req)
			if err != nil {
				fmt.Println("ERROR: do request:", err.Error())
				os.Exit(4)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	})

	took := time.Since(t0)
	fmt.Println("percolated:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f docs/sec\n", float64(c.N)/took.Seconds())
}
