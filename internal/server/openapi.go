package server

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/appstrap/appstrap/internal/util"
)

var (
	openAPIOnce sync.Once
	openAPIJSON []byte
	openAPIErr  error
)

// openAPIDocument builds and caches the OpenAPI 3 description of the
// application routes, mirroring what the Python app serves at the same path.
func openAPIDocument() ([]byte, error) {
	openAPIOnce.Do(func() {
		doc := &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:   "appstrap",
				Version: util.Version(),
			},
			Paths: openapi3.NewPaths(
				openapi3.WithPath("/", &openapi3.PathItem{
					Get: messageOperation("read_root"),
				}),
				openapi3.WithPath("/health", &openapi3.PathItem{
					Get: &openapi3.Operation{
						OperationID: "health",
						Responses: openapi3.NewResponses(
							openapi3.WithStatus(200, &openapi3.ResponseRef{
								Value: openapi3.NewResponse().
									WithDescription("Successful Response").
									WithJSONSchema(openapi3.NewObjectSchema().
										WithProperty("status", openapi3.NewStringSchema())),
							}),
						),
					},
				}),
				openapi3.WithPath("/josh", &openapi3.PathItem{
					Get: messageOperation("read_josh"),
				}),
			),
		}
		openAPIJSON, openAPIErr = doc.MarshalJSON()
	})
	return openAPIJSON, openAPIErr
}

func messageOperation(operationID string) *openapi3.Operation {
	return &openapi3.Operation{
		OperationID: operationID,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(200, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription("Successful Response").
					WithJSONSchema(openapi3.NewObjectSchema().
						WithProperty("message", openapi3.NewStringSchema())),
			}),
		),
	}
}
