package jobqueue

import (
	"strconv"

	"github.com/mft-data/fitmenthub/app/models"
)

// Typed accessors over the schemaless job params document.

func paramString(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func paramInt(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func paramUint(params map[string]interface{}, key string) uint {
	n := paramInt(params, key)
	if n < 0 {
		return 0
	}
	return uint(n)
}

func paramStringSlice(params map[string]interface{}, key string) []string {
	raw, ok := params[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func paramUintSlice(params map[string]interface{}, key string) []uint {
	raw, ok := params[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]uint, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(float64); ok && f >= 0 {
			out = append(out, uint(f))
		}
	}
	return out
}

func finishWith(job *models.Job, status string, result map[string]interface{}, errMsg string) error {
	return job.Finish(status, models.JSONFrom(result), errMsg)
}
