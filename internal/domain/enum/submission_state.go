package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SubmissionState tracks the external document submission of an invoice.
// Failures never roll back the invoice; they are retried out of band.
type SubmissionState int

const (
	SubmissionStatePending SubmissionState = 0
	SubmissionStateSent    SubmissionState = 1
	SubmissionStateFailed  SubmissionState = 2
)

func (s SubmissionState) String() string {
	return [...]string{"Pending", "Sent", "Failed"}[s]
}

func (s SubmissionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SubmissionState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SubmissionState(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = SubmissionStatePending
	case "Sent":
		*s = SubmissionStateSent
	case "Failed":
		*s = SubmissionStateFailed
	}
	return nil
}

func (s SubmissionState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SubmissionState) Scan(value interface{}) error {
	if value == nil {
		*s = SubmissionStatePending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SubmissionState(v)
	case int:
		*s = SubmissionState(v)
	}
	return nil
}
