package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTables(t *testing.T) {
	tables, err := resolveTables("")
	require.NoError(t, err)
	assert.Equal(t, gatewayTables, tables)

	tables, err = resolveTables(" invitations , users ,")
	require.NoError(t, err)
	assert.Equal(t, []string{"invitations", "users"}, tables)

	_, err = resolveTables("users; DROP TABLE users")
	assert.Error(t, err)
}

func TestClearStatements(t *testing.T) {
	assert.Equal(t, []string{"DELETE FROM users"}, clearStatements([]string{"users"}, false))
	assert.Equal(t, []string{"TRUNCATE TABLE users CASCADE"}, clearStatements([]string{"users"}, true))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("YES\n"), &out))
	assert.True(t, confirm(strings.NewReader("y\n"), &out))
	assert.False(t, confirm(strings.NewReader("no\n"), &out))
	assert.False(t, confirm(strings.NewReader(""), &out))
}

func TestClearDB_Cancelled(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"cleardb", "--tables", "users"})

	// 取消时不会连接数据库
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "操作已取消")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"sync", "check", "invite", "cleardb"})
}

func TestCheck_DoesNotRequireDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CLERK_SECRET_KEY", "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check"})

	err := cmd.Execute()

	// 只报告缺少 Clerk 密钥，不要求数据库配置
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLERK_SECRET_KEY")
	assert.NotContains(t, err.Error(), "DATABASE_URL")
}
