package save

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeRecord 将记录序列化为 YAML
//
// 版本为 0 时按当前版本写出，调用方的记录不会被修改。
func EncodeRecord(r *SaveRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("record is nil")
	}
	rec := *r
	if rec.Version == 0 {
		rec.Version = RecordVersion
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save record: %w", err)
	}
	return data, nil
}

// DecodeRecord 从 YAML 反序列化记录
//
// 返回错误的情况：
//   - 数据为空
//   - YAML 格式错误
//   - 记录版本高于当前支持的版本
func DecodeRecord(data []byte) (*SaveRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty save record")
	}

	var r SaveRecord
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save record: %w", err)
	}
	if r.Version > RecordVersion {
		return nil, fmt.Errorf("save record version %d is newer than supported %d", r.Version, RecordVersion)
	}
	if r.Version == 0 {
		r.Version = RecordVersion
	}
	return &r, nil
}
