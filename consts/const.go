package consts

// 通用错误码
const (
	CodeSuccess = 0 // 成功
)

// 客户端错误 (1xxxx)
const (
	CodeParamError       = 10001 // 参数验证失败
	CodeBodyError        = 10002 // 请求体格式错误
	CodeResourceNotFound = 10003 // 资源不存在
	CodeMethodNotAllowed = 10004 // 请求方法不允许
	CodeTooManyRequests  = 10005 // 请求过于频繁
	CodeCursorInvalid    = 10006 // 分页游标无效
	CodeLimitOutOfRange  = 10007 // 分页大小超出范围 (1-100)
)

// 认证错误 (2xxxx)
const (
	CodeUnauthorized   = 20001 // 未认证
	CodeInvalidToken   = 20002 // Token 无效
	CodeTokenExpired   = 20003 // Token 已过期
	CodePermissionDeny = 20004 // 权限不足
)

// 动态模块错误 (11xxx)
const (
	CodeUpdateNotFound   = 11001 // 动态不存在
	CodeUpdateNotVisible = 11002 // 无权查看该动态
	CodeUpdateCreateFail = 11003 // 动态创建失败
	CodeShareTargetEmpty = 11004 // 分享对象为空
)

// 关系模块错误 (12xxx)
const (
	CodeAlreadyFriend      = 12001 // 已经是好友
	CodeInvitationSent     = 12002 // 好友邀请已发送
	CodeNotFriend          = 12003 // 不存在该好友关系
	CodeInvitationNotFound = 12004 // 好友邀请不存在
	CodeInvitationHandled  = 12005 // 好友邀请已处理过
	CodeSelfInvitation     = 12006 // 不能邀请自己
)

// 圈子模块错误 (13xxx)
const (
	CodeGroupNotFound  = 13001 // 圈子不存在
	CodeNotGroupMember = 13002 // 不是圈子成员
)

// 服务端错误 (3xxxx)
const (
	CodeInternalError      = 30001 // 服务器内部错误
	CodeServiceUnavailable = 30002 // 服务暂不可用
)

// 错误消息映射
var CodeMessage = map[int32]string{
	CodeSuccess: "success",

	// 客户端错误
	CodeParamError:       "参数验证失败",
	CodeBodyError:        "请求体格式错误",
	CodeResourceNotFound: "资源不存在",
	CodeMethodNotAllowed: "请求方法不允许",
	CodeTooManyRequests:  "请求过于频繁",
	CodeCursorInvalid:    "分页游标无效",
	CodeLimitOutOfRange:  "分页大小超出范围",

	// 认证错误
	CodeUnauthorized:   "未认证",
	CodeInvalidToken:   "Token 无效",
	CodeTokenExpired:   "Token 已过期",
	CodePermissionDeny: "权限不足",

	// 动态模块
	CodeUpdateNotFound:   "动态不存在",
	CodeUpdateNotVisible: "无权查看该动态",
	CodeUpdateCreateFail: "动态创建失败",
	CodeShareTargetEmpty: "分享对象为空",

	// 关系模块
	CodeAlreadyFriend:      "已经是好友",
	CodeInvitationSent:     "好友邀请已发送",
	CodeNotFriend:          "不存在该好友关系",
	CodeInvitationNotFound: "好友邀请不存在",
	CodeInvitationHandled:  "好友邀请已处理过",
	CodeSelfInvitation:     "不能邀请自己",

	// 圈子模块
	CodeGroupNotFound:  "圈子不存在",
	CodeNotGroupMember: "不是圈子成员",

	// 服务端错误
	CodeInternalError:      "服务器内部错误",
	CodeServiceUnavailable: "服务暂不可用",
}

// GetMessage 根据错误码获取错误消息
func GetMessage(code int32) string {
	if msg, ok := CodeMessage[code]; ok {
		return msg
	}
	return "未知错误"
}

// ==================== 分页参数约束 ====================

const (
	// DefaultPageLimit 分页默认条数
	DefaultPageLimit = 20
	// MaxPageLimit 分页最大条数
	MaxPageLimit = 100
)

// ==================== Feed 扇出约束 ====================

const (
	// MaxBatchWriteOps 单个写批次的最大操作数（与存储层批量写上限对齐）
	MaxBatchWriteOps = 500

	// SummaryWindowSize 回填摘要折叠的最近动态窗口大小
	SummaryWindowSize = 10
)

// ==================== 关系状态 ====================

const (
	RelationPending  int8 = 0 // 待处理
	RelationAccepted int8 = 1 // 已接受
	RelationRejected int8 = 2 // 已拒绝
)
