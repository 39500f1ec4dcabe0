package service

import "errors"

// ==================== 服务层错误定义 ====================

var (
	// 认证相关
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrInvalidToken       = errors.New("token 无效或已过期")

	// 车辆相关
	ErrCarNotFound = errors.New("刊登记录不存在")

	// 用户管理相关
	ErrUserNotFound = errors.New("用户不存在")
	ErrInvalidRole  = errors.New("不支持的用户角色")
	ErrAdminAccount = errors.New("管理员账号不能在此处操作")

	// 状态流转相关
	ErrUnknownAction       = errors.New("未知的审核操作")
	ErrInvalidTransition   = errors.New("当前状态不允许该操作")
	ErrConfirmationExpired = errors.New("确认凭据无效或已过期，请重新发起")

	// 提交校验相关
	ErrMissingRequired = errors.New("品牌、车型、价格和至少一张图片为必填项")
	ErrInvalidPrice    = errors.New("价格必须为大于 0 的数字")
	ErrTooManyImages   = errors.New("最多只能上传 7 张图片")
	ErrNotAnImage      = errors.New("文件不是图片类型")
)
