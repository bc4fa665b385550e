package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticEmail(t *testing.T) {
	email := SyntheticEmail(42)
	assert.Equal(t, "host_42@system.local", email)
	assert.True(t, IsSyntheticEmail(email))
	assert.True(t, IsSyntheticEmail("  HOST_7@System.Local "))
	assert.False(t, IsSyntheticEmail("reception@system.local"))
	assert.False(t, IsSyntheticEmail("host_42@example.com"))
}

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"jane@acme.qa":       true,
		"j.doe+desk@acme.co": true,
		"jane@acme":          false,
		"jane acme.qa":       false,
		"":                   false,
		"@acme.qa":           false,
	}
	for in, want := range cases {
		assert.Equal(t, want, IsValidEmail(in), in)
	}
}

func TestCreateHostRequestNormalizeValidate(t *testing.T) {
	email := "  Office@Acme.QA "
	req := CreateHostRequest{ExternalID: " c-1 ", Name: " Acme ", Email: &email}
	req.Normalize()
	require.NoError(t, req.Validate())

	assert.Equal(t, "c-1", req.ExternalID)
	assert.Equal(t, "Acme", req.Company)
	assert.Equal(t, HostActive, req.Status)
	require.NotNil(t, req.Email)
	assert.Equal(t, "office@acme.qa", *req.Email)
}

func TestCreateHostRequestRejects(t *testing.T) {
	bad := "not-an-email"
	loc := Location("ANNEX")

	for name, req := range map[string]CreateHostRequest{
		"blank name":  {ExternalID: "c-1", Name: "  "},
		"no external": {Name: "Acme"},
		"bad email":   {ExternalID: "c-1", Name: "Acme", Email: &bad},
		"bad loc":     {ExternalID: "c-1", Name: "Acme", Location: &loc},
	} {
		t.Run(name, func(t *testing.T) {
			req.Normalize()
			assert.Error(t, req.Validate())
		})
	}
}

func TestCreateUserRequestAcceptsSyntheticEmail(t *testing.T) {
	req := CreateUserRequest{Email: SyntheticEmail(3), Name: "Acme"}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, RoleHost, req.Role)
}
