/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"chainguard.dev/crisiseval/storage"
)

// ErrUnrecognizedNotification is returned for payloads that are neither an
// S3 event nor a GCS object notification.
var ErrUnrecognizedNotification = errors.New("unrecognized storage notification")

type s3Event struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

type gcsNotification struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// ParseNotification derives the transcript location from a storage change
// notification. S3 event keys are form-encoded and are decoded here, with
// "+" mapped to a space. GCS object names are used as given. Only the first
// S3 record is used.
func ParseNotification(raw []byte) (storage.Location, error) {
	var ev s3Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return storage.Location{}, fmt.Errorf("decoding notification: %w", err)
	}
	if len(ev.Records) > 0 {
		rec := ev.Records[0].S3
		key, err := url.QueryUnescape(rec.Object.Key)
		if err != nil {
			return storage.Location{}, fmt.Errorf("decoding object key %q: %w", rec.Object.Key, err)
		}
		loc := storage.Location{Bucket: rec.Bucket.Name, Key: key}
		if !loc.Valid() {
			return storage.Location{}, fmt.Errorf("%w: s3 record without bucket or key", ErrUnrecognizedNotification)
		}
		return loc, nil
	}

	var gn gcsNotification
	if err := json.Unmarshal(raw, &gn); err != nil {
		return storage.Location{}, fmt.Errorf("decoding notification: %w", err)
	}
	loc := storage.Location{Bucket: gn.Bucket, Key: gn.Name}
	if !loc.Valid() {
		return storage.Location{}, ErrUnrecognizedNotification
	}
	return loc, nil
}
