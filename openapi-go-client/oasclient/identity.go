// Copyright (c) 2021 Palantir Technologies. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oasclient

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	werror "github.com/palantir/witchcraft-go-error"

	"github.com/palantir/openapi-go-runtime/openapi-go-contract/codecs"
)

// identityMaxLen bounds the normalized identity; beyond it the identity
// degenerates to a content hash.
const identityMaxLen = 110

var (
	schemePattern  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	nonWordPattern = regexp.MustCompile(`\W+`)
)

// specIdentity derives the canonical cache key for a specification source:
// scheme stripped, runs of non-word characters collapsed to underscores,
// and a SHA-256 digest once the result exceeds identityMaxLen. Non-string
// sources are identified by their JSON encoding.
func specIdentity(source interface{}) (string, error) {
	var s string
	switch src := source.(type) {
	case string:
		s = src
	case []byte:
		s = string(src)
	default:
		data, err := codecs.JSON.Marshal(src)
		if err != nil {
			return "", werror.Wrap(err, "failed to derive specification identity")
		}
		s = string(data)
	}
	return normalizeIdentity(s), nil
}

func normalizeIdentity(s string) string {
	s = schemePattern.ReplaceAllString(s, "")
	s = nonWordPattern.ReplaceAllString(s, "_")
	if len(s) > identityMaxLen {
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:])
	}
	return s
}
