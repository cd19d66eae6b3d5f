package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// gatewayTables 所有需要清空的表名
// 注意：顺序很重要！先删除引用方（webhook_events 独立，invitations 引用 users），再删除被依赖的表
var gatewayTables = []string{"webhook_events", "invitations", "users"}

func newClearDBCommand() *cobra.Command {
	var (
		force    bool
		truncate bool
		tables   string
	)

	cmd := &cobra.Command{
		Use:   "cleardb",
		Short: "Delete all gateway data (development only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			targetTables, err := resolveTables(tables)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			// 确认提示
			if !force {
				fmt.Fprintln(out, "⚠️  警告：此操作将删除数据库中的所有数据！")
				fmt.Fprintln(out, "📊 受影响的表：")
				for _, t := range targetTables {
					fmt.Fprintf(out, "   - %s\n", t)
				}
				if !confirm(cmd.InOrStdin(), out) {
					fmt.Fprintln(out, "❌ 操作已取消")
					return nil
				}
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			// 执行清库
			fmt.Fprintln(out, "\n🚀 开始清库...")
			var failed int
			for _, stmt := range clearStatements(targetTables, truncate) {
				if err := a.db.Exec(stmt).Error; err != nil {
					failed++
					fmt.Fprintf(out, "❌ %s 失败: %v\n", stmt, err)
					continue
				}
				fmt.Fprintf(out, "✅ %s\n", stmt)
			}
			if failed > 0 {
				return fmt.Errorf("%d table(s) could not be cleared", failed)
			}

			fmt.Fprintln(out, "\n🎉 清库操作完成！")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "跳过确认提示，强制执行清库")
	cmd.Flags().BoolVar(&truncate, "truncate", false, "使用 TRUNCATE（更快，CASCADE 处理外键）")
	cmd.Flags().StringVar(&tables, "tables", "", "指定要清空的表，逗号分隔（例如: invitations,users）；留空表示清空所有表")
	return cmd
}

// resolveTables 解析命令行指定的表名；只允许网关自己的表，防止拼接任意 SQL
func resolveTables(input string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return gatewayTables, nil
	}

	known := make(map[string]bool, len(gatewayTables))
	for _, t := range gatewayTables {
		known[t] = true
	}

	var tables []string
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !known[p] {
			return nil, fmt.Errorf("unknown table %q (allowed: %s)", p, strings.Join(gatewayTables, ", "))
		}
		tables = append(tables, p)
	}
	return tables, nil
}

func clearStatements(tables []string, truncate bool) []string {
	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		if truncate {
			stmts = append(stmts, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", t))
		} else {
			stmts = append(stmts, fmt.Sprintf("DELETE FROM %s", t))
		}
	}
	return stmts
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "\n确认执行清库操作？(yes/no): ")
	input, _ := bufio.NewReader(in).ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "yes" || input == "y"
}
