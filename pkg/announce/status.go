// Package announce publishes the bring-up status of a switch chip to MQTT
// so monitors can see which chips are attached and identified.
package announce

import (
	"errors"
	"fmt"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/protobuf/jsonpb"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

// Status is the bring-up status of one device.
type Status struct {
	Name      string
	MachineID string
	BusURL    string
	State     ksz8863.State
	ChipID    ksz8863.ChipID
	Revision  ksz8863.Revision
	Error     string
	Time      time.Time
}

// MachineID returns the ID of this host, specific to this driver.
func MachineID() string {
	id, err := machineid.ProtectedID(ksz8863.DriverName)
	if err != nil {
		return "unknown"
	}
	return id
}

// NewStatus captures the status of dev after bring-up returned rev and err.
func NewStatus(name string, dev *ksz8863.Device, rev ksz8863.Revision, err error) *Status {
	s := &Status{
		Name:      name,
		MachineID: MachineID(),
		State:     dev.State(),
		Time:      time.Now(),
	}
	if err == nil {
		s.Revision, s.ChipID = rev, rev.ChipID()
		return s
	}
	s.Error = err.Error()
	var notFound *ksz8863.NotFoundError
	if errors.As(err, &notFound) {
		s.ChipID = notFound.Identity
	}
	return s
}

var stateValues = map[string]ksz8863.State{
	ksz8863.StateUninitialized.String(): ksz8863.StateUninitialized,
	ksz8863.StateIdentified.String():    ksz8863.StateIdentified,
	ksz8863.StateReady.String():         ksz8863.StateReady,
	ksz8863.StateFailed.String():        ksz8863.StateFailed,
}

func strValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func numValue(n float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: n}}
}

// Proto converts the status to a protobuf Struct.
func (s *Status) Proto() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"name":       strValue(s.Name),
		"machine_id": strValue(s.MachineID),
		"state":      strValue(s.State.String()),
		"chip_id":    numValue(float64(s.ChipID)),
		"revision":   numValue(float64(s.Revision)),
		"time":       strValue(s.Time.UTC().Format(time.RFC3339Nano)),
	}
	if s.BusURL != "" {
		fields["bus_url"] = strValue(s.BusURL)
	}
	if s.Error != "" {
		fields["error"] = strValue(s.Error)
	}
	return &structpb.Struct{Fields: fields}
}

// Encode serializes the status.
func (s *Status) Encode() ([]byte, error) {
	return proto.Marshal(s.Proto())
}

// JSON renders the status for display.
func (s *Status) JSON() (string, error) {
	return (&jsonpb.Marshaler{}).MarshalToString(s.Proto())
}

// Decode parses an encoded status.
func Decode(payload []byte) (*Status, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(payload, &pb); err != nil {
		return nil, err
	}
	s := &Status{
		Name:      pb.Fields["name"].GetStringValue(),
		MachineID: pb.Fields["machine_id"].GetStringValue(),
		BusURL:    pb.Fields["bus_url"].GetStringValue(),
		ChipID:    ksz8863.ChipID(pb.Fields["chip_id"].GetNumberValue()),
		Revision:  ksz8863.Revision(pb.Fields["revision"].GetNumberValue()),
		Error:     pb.Fields["error"].GetStringValue(),
	}
	state, ok := stateValues[pb.Fields["state"].GetStringValue()]
	if !ok {
		return nil, fmt.Errorf("unknown state %q", pb.Fields["state"].GetStringValue())
	}
	s.State = state
	if ts := pb.Fields["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid time: %v", err)
		}
		s.Time = t
	}
	return s, nil
}
