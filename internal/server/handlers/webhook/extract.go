package webhook

import (
	"encoding/json"
	"strconv"
	"strings"
)

// extractOrderID pulls the order identifier out of a webhook payload.
// Payload shapes vary across webhook topics and API versions, so a fixed
// list of strategies is tried in order; the first match wins.
func extractOrderID(body []byte) (string, bool) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}

	for _, strategy := range extractionStrategies {
		if id, ok := strategy(payload); ok {
			return id, true
		}
	}
	return "", false
}

type extractStrategy func(payload map[string]interface{}) (string, bool)

var extractionStrategies = []extractStrategy{
	extractDirectID,
	extractNestedOrderID,
	extractGraphQLID,
}

// extractDirectID handles order-topic payloads: {"id": 5678901234}.
func extractDirectID(payload map[string]interface{}) (string, bool) {
	return asID(payload["id"])
}

// extractNestedOrderID handles payloads that reference an order from
// another resource: {"order_id": 5678901234}.
func extractNestedOrderID(payload map[string]interface{}) (string, bool) {
	return asID(payload["order_id"])
}

// extractGraphQLID handles {"admin_graphql_api_id": "gid://shopify/Order/5678901234"}.
func extractGraphQLID(payload map[string]interface{}) (string, bool) {
	gid, ok := payload["admin_graphql_api_id"].(string)
	if !ok {
		return "", false
	}

	const prefix = "gid://shopify/Order/"
	if !strings.HasPrefix(gid, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(gid, prefix)
	if id == "" {
		return "", false
	}
	return id, true
}

func asID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		// JSON numbers decode as float64; order ids are integral.
		return strconv.FormatInt(int64(id), 10), true
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}
