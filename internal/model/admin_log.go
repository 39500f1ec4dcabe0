package model

import "gorm.io/datatypes"

// 审核操作类型
const (
	AdminActionApprove   = "approve"
	AdminActionReject    = "reject"
	AdminActionMarkSold  = "mark_sold"
	AdminActionRepublish = "republish"
	AdminActionDelete    = "delete"
	AdminActionEdit      = "edit"

	// 用户管理操作
	AdminActionSetRole    = "set_role"
	AdminActionDeleteUser = "delete_user"
)

// AdminActionLog 后台审核操作日志
// 每次确认生效的状态流转/编辑/删除/用户变更都会落一条记录
type AdminActionLog struct {
	BaseModel

	OperatorID int64  `gorm:"index"`
	Operator   string `gorm:"size:100"` // 操作人邮箱快照
	Action     string `gorm:"size:30;index"`
	CarID      string `gorm:"size:36;index"`

	// 用户管理操作的目标账号，车辆操作时为 0
	TargetUserID int64 `gorm:"index;default:0"`

	// 操作前后的关键字段快照
	Payload datatypes.JSON `gorm:"type:jsonb"`
}

func (AdminActionLog) TableName() string {
	return "admin_action_logs"
}
