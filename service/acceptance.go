package service

import (
	"net/http"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create index", func(a *biff.A) {
		resp := apiRequest("PUT", "/my-index").
			WithBodyJson(JSON{
				"shards": 2,
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		expectedBody := JSON{
			"name":     "my-index",
			"shards":   2,
			"replicas": 0,
			"queries":  0,
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)

		a.Alternative("Retrieve index", func(a *biff.A) {
			resp := apiRequest("GET", "/my-index").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("List indexes", func(a *biff.A) {
			resp := apiRequest("GET", "/_indexes").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedBody})
		})

		a.Alternative("Create index again", func(a *biff.A) {
			resp := apiRequest("PUT", "/my-index").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
			expectedBody := JSON{
				"error": JSON{
					"message":     "index already exists",
					"description": "an index with that name already exists",
				},
			}
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("Delete index", func(a *biff.A) {
			resp := apiRequest("DELETE", "/my-index").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{"acknowledged": true})

			a.Alternative("Get deleted index", func(a *biff.A) {
				resp := apiRequest("GET", "/my-index").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Percolate on deleted index", func(a *biff.A) {
				resp := apiRequest("GET", "/my-index/doc/_percolate").
					WithBodyJson(JSON{"doc": JSON{}}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Register query", func(a *biff.A) {
			resp := apiRequest("PUT", "/my-index/_percolator/kuku").
				WithBodyJson(JSON{
					"query": JSON{"term": JSON{"field1": "value1"}},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"id":      "kuku",
				"version": 1,
				"created": true,
			})

			a.Alternative("Percolate matching document", func(a *biff.A) {
				resp := apiRequest("GET", "/my-index/type1/_percolate").
					WithBodyJson(JSON{
						"doc": JSON{"field1": "value1"},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"matches":           []string{"kuku"},
					"total_shards":      2,
					"successful_shards": 2,
					"shard_failures":    []JSON{},
				})
			})

			a.Alternative("Percolate non matching document", func(a *biff.A) {
				resp := apiRequest("POST", "/my-index/type1/_percolate").
					WithBodyJson(JSON{
						"doc": JSON{"field1": "other"},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"matches":           []string{},
					"total_shards":      2,
					"successful_shards": 2,
					"shard_failures":    []JSON{},
				})
			})

			a.Alternative("Overwrite query", func(a *biff.A) {
				resp := apiRequest("PUT", "/my-index/_percolator/kuku").
					WithBodyJson(JSON{
						"query": JSON{"term": JSON{"field1": "value2"}},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"id":      "kuku",
					"version": 2,
					"created": false,
				})

				a.Alternative("Only the replacement matches", func(a *biff.A) {
					resp := apiRequest("GET", "/my-index/type1/_percolate").
						WithBodyJson(JSON{
							"doc": JSON{"field1": "value2"},
						}).Do()

					matches := resp.BodyJson().(JSON)["matches"]
					biff.AssertEqualJson(matches, []string{"kuku"})
				})
			})

			a.Alternative("Unregister query", func(a *biff.A) {
				resp := apiRequest("DELETE", "/my-index/_percolator/kuku").Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"id":    "kuku",
					"found": true,
				})

				a.Alternative("Unregister again", func(a *biff.A) {
					resp := apiRequest("DELETE", "/my-index/_percolator/kuku").Do()

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), JSON{
						"id":    "kuku",
						"found": false,
					})
				})

				a.Alternative("Percolate after unregister", func(a *biff.A) {
					resp := apiRequest("GET", "/my-index/type1/_percolate").
						WithBodyJson(JSON{
							"doc": JSON{"field1": "value1"},
						}).Do()

					matches := resp.BodyJson().(JSON)["matches"]
					biff.AssertEqualJson(matches, []string{})
				})
			})

			a.Alternative("Index counts the query", func(a *biff.A) {
				resp := apiRequest("GET", "/my-index").Do()

				biff.AssertEqualJson(resp.BodyJson().(JSON)["queries"], 1)
			})
		})

		a.Alternative("Register query without query member", func(a *biff.A) {
			resp := apiRequest("PUT", "/my-index/_percolator/kuku").
				WithBodyJson(JSON{"kuery": JSON{}}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Register query that does not compile", func(a *biff.A) {
			resp := apiRequest("PUT", "/my-index/_percolator/kuku").
				WithBodyJson(JSON{
					"query": JSON{"fuzzy": JSON{"field1": "value1"}},
				}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			description := resp.BodyJson().(JSON)["error"].(JSON)["description"]
			biff.AssertEqual(description, "the query definition could not be compiled")

			a.Alternative("Nothing was registered", func(a *biff.A) {
				resp := apiRequest("GET", "/my-index").Do()

				biff.AssertEqualJson(resp.BodyJson().(JSON)["queries"], 0)
			})
		})

		a.Alternative("Percolate without doc member", func(a *biff.A) {
			resp := apiRequest("POST", "/my-index/type1/_percolate").
				WithBodyJson(JSON{"document": JSON{}}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Match sets are per document", func(a *biff.A) {
			apiRequest("PUT", "/my-index/_percolator/test1").
				WithBodyJson(JSON{
					"query": JSON{"term": JSON{"field2": "value"}},
				}).Do()
			apiRequest("PUT", "/my-index/_percolator/test2").
				WithBodyJson(JSON{
					"query": JSON{"term": JSON{"field1": 1}},
				}).Do()

			percolate := func(doc JSON) interface{} {
				resp := apiRequest("GET", "/my-index/type1/_percolate").
					WithBodyJson(JSON{"doc": doc}).Do()
				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				return resp.BodyJson().(JSON)["matches"]
			}

			biff.AssertEqualJson(percolate(JSON{"field1": 1, "field2": "value"}), []string{"test1", "test2"})
			biff.AssertEqualJson(percolate(JSON{"field1": 1}), []string{"test2"})
			biff.AssertEqualJson(percolate(JSON{"field2": "value"}), []string{"test1"})
		})
	})

	a.Alternative("Register query on not existing index", func(a *biff.A) {
		resp := apiRequest("PUT", "/fresh-index/_percolator/auto").
			WithBodyJson(JSON{
				"query": JSON{"match_all": JSON{}},
			}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		biff.AssertEqualJson(resp.BodyJson(), JSON{
			"id":      "auto",
			"version": 1,
			"created": true,
		})

		a.Alternative("The index was created on the fly", func(a *biff.A) {
			resp := apiRequest("GET", "/fresh-index").Do()

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), JSON{
				"name":     "fresh-index",
				"shards":   1,
				"replicas": 0,
				"queries":  1,
			})
		})
	})

	a.Alternative("Percolate on not existing index", func(a *biff.A) {
		resp := apiRequest("GET", "/ghost/type1/_percolate").
			WithBodyJson(JSON{"doc": JSON{}}).Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
		expectedBody := JSON{
			"error": JSON{
				"message":     "index not found",
				"description": "the target index does not exist",
			},
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)
	})

	a.Alternative("Unregister on not existing index", func(a *biff.A) {
		resp := apiRequest("DELETE", "/ghost/_percolator/kuku").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})

	a.Alternative("List indexes when empty", func(a *biff.A) {
		resp := apiRequest("GET", "/_indexes").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusOK)
		biff.AssertEqualJson(resp.BodyJson(), []JSON{})
	})
}
