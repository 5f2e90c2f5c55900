package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidName(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"abc", true},
		{"Hero_99", true},
		{"a2345678901234567890", true},
		{"ab", false},
		{"a23456789012345678901", false},
		{"bad name", false},
		{"名字", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, ValidName(c.name), "name %q", c.name)
	}
}

func TestCheckPasswordPolicy(t *testing.T) {
	assert.Empty(t, CheckPasswordPolicy("hunter2abc"))
	assert.Empty(t, CheckPasswordPolicy("Abc123"))

	assert.NotEmpty(t, CheckPasswordPolicy("a1"))         // 太短
	assert.NotEmpty(t, CheckPasswordPolicy("abcdefgh"))   // 缺數字
	assert.NotEmpty(t, CheckPasswordPolicy("12345678"))   // 缺字母
	assert.NotEmpty(t, CheckPasswordPolicy("password1"))  // 常見密碼
	assert.NotEmpty(t, CheckPasswordPolicy("abc123"))     // 常見密碼
}
