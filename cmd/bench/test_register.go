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

func TestRegister(c Config) {

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

	items := c.N

	t0 := time.Now()
	Parallel(c.Workers, func() {
		for {
			n := atomic.AddInt64(&items, -1)
			if n < 0 {
				break
			}

			body, _ := sjson.SetBytes([]byte(`{"query":{"term":{}}}`), "query.term.field1", "value-"+strconv.FormatInt(n%100, 10))

			req, err := http.NewRequest("PUT", c.Base+"/"+index+"/_percolator/"+strconv.FormatInt(n, 10), bytes.NewReader(body))
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
	fmt.Println("registered:", c.N)
	fmt.Println("took:", took)
	fmt.Printf("Throughput: %.2f queries/sec\n", float64(c.N)/took.Seconds())
}
