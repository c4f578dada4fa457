/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIFS embed.FS

// GetSwagger loads the embedded OpenAPI document for request validation.
func GetSwagger() (*openapi3.T, error) {
	data, err := openAPIFS.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded OpenAPI document: %w", err)
	}
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	return swagger, nil
}

// LoadOpenAPIDocument converts the embedded YAML document to the generic
// form served by the docs endpoint.
func LoadOpenAPIDocument() (map[string]any, error) {
	data, err := openAPIFS.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded OpenAPI document: %w", err)
	}
	var document map[string]any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	return document, nil
}
