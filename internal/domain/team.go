package domain

type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Creator string `json:"creator"`            // 创建者的 authId
	TableNo *int   `json:"table_no,omitempty"` // 分配桌号之后才会有值
}

// IsSeated 判断队伍是否已经分配了桌号
func (t *Team) IsSeated() bool {
	return t.TableNo != nil
}
