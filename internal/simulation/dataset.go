package simulation

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kaan-Sat/CC2022-Control-Panel/pkg/protocol"
)

// placeholderToken CSV 中的占位符，展开为队伍编号
const placeholderToken = "$"

// tempFileName 过滤后数据的临时文件名，供操作员检查
const tempFileName = "CC2022_temp.csv"

// Dataset 只读的仿真数据集：行、每行若干字段
type Dataset struct {
	name string
	rows [][]string
}

// LoadDataset 读取并过滤仿真 CSV 文件：去掉所有空白字符、
// 跳过 # 开头的注释行和空行、把占位符 $ 展开为队伍编号，
// 过滤结果另存到系统临时目录后解析为数据集。
func LoadDataset(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开仿真 CSV 失败: %w", err)
	}
	defer file.Close()

	var filtered strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), "")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.ReplaceAll(line, placeholderToken, protocol.TeamID)
		filtered.WriteString(line)
		filtered.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取仿真 CSV 失败: %w", err)
	}

	// 过滤后的副本存到临时目录（与原实现一致，方便操作员核对）
	tempPath := filepath.Join(os.TempDir(), tempFileName)
	if err := os.WriteFile(tempPath, []byte(filtered.String()), 0o644); err != nil {
		return nil, fmt.Errorf("保存过滤后 CSV 失败: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(filtered.String()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析仿真 CSV 失败: %w", err)
	}

	return &Dataset{
		name: filepath.Base(path),
		rows: rows,
	}, nil
}

// Name 返回数据集来源文件名
func (d *Dataset) Name() string { return d.name }

// Len 返回数据集的行数
func (d *Dataset) Len() int { return len(d.rows) }

// Row 返回第 i 行的字段
func (d *Dataset) Row(i int) []string { return d.rows[i] }
