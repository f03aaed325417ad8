/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
)

// SignaturePayload holds the signature sub-object of a signature result (an IRMA attribute-based signature).
// It contains numbers far exceeding the float64 range, so it is decoded with json.Number:
// every number keeps its decimal text and marshals back to exactly that text.
type SignaturePayload struct {
	value map[string]interface{}
}

// ParseSignaturePayload decodes the given JSON object without losing numeric precision.
func ParseSignaturePayload(data []byte) (*SignaturePayload, error) {
	value, err := decodeLossless(data)
	if err != nil {
		return nil, ParseError{Cause: err}
	}
	return &SignaturePayload{value: value}, nil
}

// Value returns the decoded payload. Numbers are of type json.Number.
func (s SignaturePayload) Value() map[string]interface{} {
	return s.value
}

// Number returns the top-level numeric member with the given name as big.Int.
func (s SignaturePayload) Number(name string) (*big.Int, bool) {
	n, ok := s.value[name].(json.Number)
	if !ok {
		return nil, false
	}
	return new(big.Int).SetString(n.String(), 10)
}

func (s SignaturePayload) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

func (s *SignaturePayload) UnmarshalJSON(data []byte) error {
	value, err := decodeLossless(data)
	if err != nil {
		return ParseError{Cause: err}
	}
	s.value = value
	return nil
}

func decodeLossless(data []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value map[string]interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.New("not a JSON object")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return value, nil
}
