package model

// 用户状态
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 系统级角色
const (
	RoleAdmin = "admin" // 审核后台管理员
	RoleUser  = "user"  // 普通卖家账号

	// 市场侧角色 (后台用户管理页维护)
	RoleMember     = "member"     // 普通会员
	RoleGallery    = "gallery"    // 车行账号
	RoleAmbassador = "ambassador" // 平台大使
)

// MemberRoles 用户管理页允许设置的角色集合
// admin 不在其中：管理员账号不从这个入口处理
var MemberRoles = map[string]bool{
	RoleMember:     true,
	RoleGallery:    true,
	RoleAmbassador: true,
}

// SysUser 系统用户/管理员账号
type SysUser struct {
	BaseModel
	// 基础信息
	Email    string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码
	Name     string `gorm:"size:100"`

	// 联系方式与车行名 (用户管理页展示)
	Whatsapp    string `gorm:"size:30"`
	GalleryName string `gorm:"size:100"`

	// 角色: admin (审核员), user (卖家), member/gallery/ambassador (市场侧)
	Role   string `gorm:"size:20;default:'user'"`
	Status string `gorm:"size:20;default:'active'"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
