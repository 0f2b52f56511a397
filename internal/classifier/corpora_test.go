/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpusLookupsNormalizeCase(t *testing.T) {
	c := NewReferenceCorpora()

	assert.True(t, c.IsFirstName("  John "))
	assert.True(t, c.IsFirstName("ОЛЬГА"))
	assert.True(t, c.IsLastName("SMITH"))
	assert.True(t, c.IsCity("Springfield"))
	assert.True(t, c.IsCity("new york"))
	assert.False(t, c.IsCity("Gotham"))
	assert.False(t, c.IsFirstName(""))
}

func TestCorporaOptionsExtendDefaults(t *testing.T) {
	c := NewReferenceCorpora(
		WithFirstNames("Zebulon"),
		WithLastNames("Quixote"),
		WithCities("Gotham", "  "),
	)

	assert.True(t, c.IsFirstName("zebulon"))
	assert.True(t, c.IsLastName("QUIXOTE"))
	assert.True(t, c.IsCity("gotham"))
	assert.True(t, c.IsCity("boston"))
	assert.False(t, c.IsCity(""))
}

func TestStateRegion(t *testing.T) {
	c := NewReferenceCorpora()

	tests := []struct {
		value  string
		region string
		ok     bool
	}{
		{"California", "US", true},
		{"CA", "US", true},
		{"new york", "US", true},
		{"Ontario", "CA", true},
		{"QC", "CA", true},
		{"Tasmania", "AU", true},
		{"Московская область", "RU", true},
		{"Gotham", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			region, ok := c.StateRegion(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestCountryRegion(t *testing.T) {
	c := NewReferenceCorpora()

	tests := []struct {
		value  string
		region string
		ok     bool
	}{
		{"USA", "US", true},
		{"United States", "US", true},
		{"unitedstates", "US", true},
		{"Canada", "CA", true},
		{"Россия", "RU", true},
		{"Deutschland", "DE", true},
		{"Narnia", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			region, ok := c.CountryRegion(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.region, region)
		})
	}
}

func TestLooksLikeCity(t *testing.T) {
	c := NewReferenceCorpora()

	tests := []struct {
		value string
		want  bool
	}{
		{"Springfield", true},
		{"springfield", true},
		{"Gotham", true},
		{"Santa Monica", true},
		{"gotham", false},
		{"greenville", true},
		{"ville", false},
		{"GOTHAM", false},
		{"123", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, c.LooksLikeCity(tt.value))
		})
	}
}
