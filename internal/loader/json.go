package loader

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// DecodeBundle decodes a JSON input bundle. Exported bundles are frequently
// ragged: individual arrays may be missing, null, or the wrong shape
// entirely. Any array that fails to decode is treated as empty with a
// warning, so one bad dataset never aborts a run.
func DecodeBundle(r io.Reader) (*model.InputBundle, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "loader: decode bundle")
	}

	var b model.InputBundle
	decodeArray(raw, "clients", &b.Clients)
	decodeArray(raw, "touchpoints_v1", &b.TouchpointsV1)
	decodeArray(raw, "touchpoints_v2", &b.TouchpointsV2)
	decodeArray(raw, "touchpoints_v3_main", &b.TouchpointsV3)
	decodeArray(raw, "touchpoints_v3_subsequence", &b.TouchpointsV3Sub)
	decodeArray(raw, "convrt_leads", &b.InstagramLeads)
	decodeArray(raw, "audit_link_statuses", &b.AuditStatuses)
	decodeArray(raw, "report_link_statuses", &b.ReportStatuses)
	decodeArray(raw, "audits", &b.Audits)
	decodeArray(raw, "contacts", &b.Contacts)

	return &b, nil
}

// decodeArray unmarshals one named array from the raw bundle, logging and
// leaving the destination empty on absence, null, or shape mismatch.
func decodeArray[T any](raw map[string]json.RawMessage, key string, dst *[]T) {
	msg, ok := raw[key]
	if !ok || string(msg) == "null" {
		return
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		zap.L().Warn("bundle array has unexpected shape, treating as empty",
			zap.String("key", key),
			zap.Error(err),
		)
		*dst = nil
	}
}
