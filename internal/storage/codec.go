package storage

import (
	"encoding/json"
	"errors"

	"venturesim/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeTrajectory(t model.EpisodeTrajectory) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTrajectory(data []byte) (model.EpisodeTrajectory, error) {
	var trajectory model.EpisodeTrajectory
	if err := json.Unmarshal(data, &trajectory); err != nil {
		return model.EpisodeTrajectory{}, err
	}
	if err := checkVersion(trajectory.VersionedRecord); err != nil {
		return model.EpisodeTrajectory{}, err
	}
	return trajectory, nil
}

// Stamp sets the current schema/codec versions on a record before save.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
