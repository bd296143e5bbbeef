package domain

// Unit 公寓/单元领域模型（对应 units 表）
// Slug 是对外公开的句柄；未 published 的单元对 guest 流程不可见
type Unit struct {
	UnitID    string `db:"unit_id"`
	Slug      string `db:"slug"`
	UnitName  string `db:"unit_name"`
	Published bool   `db:"published"`
}
