// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTag(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/fleet-status/list", "fleet-status"},
		{"/v2/robots/{id}", "robots"},
		{"/api/v10/missions", "missions"},
		{"/api/v1/maps/v2/zones", "maps"},
		{"/health", "health"},
		{"/maps/current", "maps"},
		{"/api/version/list", "api"},
		{"/api/v1", "api"},
		{"/api/v1/", "api"},
		{"/", ""},
		{"", ""},
		{"users", ""},
		{"//double", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTag(tt.path))
		})
	}
}

func TestStartCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fleet-status", "Fleet Status"},
		{"fleet_status", "Fleet Status"},
		{"fleetStatus", "Fleet Status"},
		{"--fleet--status--", "Fleet Status"},
		{"HTTPServer", "HTTP Server"},
		{"API", "API"},
		{"v2beta", "V 2 Beta"},
		{"robot's", "Robots"},
		{"1st-floor", "1st Floor"},
		{"2nd-level", "2nd Level"},
		{"3rdParty", "3rd Party"},
		{"4th_dock", "4th Dock"},
		{"11st", "11st"},
		{"2th", "2 Th"},
		{"5thx", "5 Thx"},
		{"café", "Cafe"},
		{"Straße", "Strasse"},
		{"health", "Health"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StartCase(tt.in))
		})
	}
}
