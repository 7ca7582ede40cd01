package handler

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	dErrors "vaxledger/pkg/domain-errors"
	"vaxledger/pkg/platform/httputil"
)

//go:embed schema/rule.schema.json
var ruleSchemaJSON []byte

var ruleSchema = mustCompile(ruleSchemaJSON)

func mustCompile(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile rule schema: %v", err))
	}
	return schema
}

// schemaCheck rejects bodies that do not match the rule schema before the
// DTO is decoded.
func schemaCheck(schema *gojsonschema.Schema) httputil.RawCheck {
	return func(body []byte) error {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
		if err != nil {
			return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		if result.Valid() {
			return nil
		}
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return dErrors.New(dErrors.CodeValidation, "rule does not match schema: "+strings.Join(msgs, "; "))
	}
}
