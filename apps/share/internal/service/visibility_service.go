package service

import (
	"ShareServer/model"
)

// visibilityServiceImpl 可见性解析实现。
// 纯计算：所有关系/成员数据由调用方注入，本层不做任何 I/O，便于属性测试。
type visibilityServiceImpl struct{}

// NewVisibilityService 创建可见性解析实例
func NewVisibilityService() IVisibilityService {
	return &visibilityServiceImpl{}
}

// VisibilityToken 构造渠道令牌：{channel}:{uuid}
func VisibilityToken(channelType, channelUUID string) string {
	return channelType + ":" + channelUUID
}

// Resolve 解析受众。
// broadcast 时将显式列表与"全部好友 + 全部圈子"做并集；
// 接收者集合 = {发布者} ∪ 好友 ∪ 圈子成员（去重）；
// 令牌按渠道逐个生成：self 一个、每个好友一个、每个圈子一个 ——
// 即使某接收者经多渠道可达，渠道令牌也分别保留。
func (s *visibilityServiceImpl) Resolve(input AudienceInput) *Audience {
	// 1. 渠道去重（保持首次出现顺序，结果可复现）
	friendUUIDs := dedupe(input.FriendUUIDs, input.CreatorUUID)
	groupUUIDs := dedupe(input.GroupUUIDs, "")
	if input.Broadcast {
		friendUUIDs = mergeDedupe(friendUUIDs, input.AcceptedFriendUUIDs, input.CreatorUUID)
		groupUUIDs = mergeDedupe(groupUUIDs, input.CreatorGroupUUIDs, "")
	}

	aud := &Audience{
		CreatorUUID:       input.CreatorUUID,
		FriendUUIDs:       friendUUIDs,
		GroupUUIDs:        groupUUIDs,
		friendSet:         make(map[string]struct{}, len(friendUUIDs)),
		groupsByRecipient: make(map[string][]string),
	}
	for _, f := range friendUUIDs {
		aud.friendSet[f] = struct{}{}
	}

	// 2. 接收者集合：{发布者} ∪ 好友 ∪ 圈子成员
	seen := map[string]struct{}{input.CreatorUUID: {}}
	aud.Recipients = append(aud.Recipients, input.CreatorUUID)
	for _, f := range friendUUIDs {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		aud.Recipients = append(aud.Recipients, f)
	}
	for _, g := range groupUUIDs {
		for _, member := range input.GroupMembers[g] {
			// 记录该圈子对成员的可见性贡献（交集信息，扇出时落到条目上）
			aud.groupsByRecipient[member] = append(aud.groupsByRecipient[member], g)
			if _, ok := seen[member]; ok {
				continue
			}
			seen[member] = struct{}{}
			aud.Recipients = append(aud.Recipients, member)
		}
	}

	// 3. 渠道令牌：self + 每个好友 + 每个圈子
	aud.Tokens = append(aud.Tokens, &model.UpdateVisibility{
		Token:       VisibilityToken(model.ChannelSelf, input.CreatorUUID),
		ChannelType: model.ChannelSelf,
		ChannelUuid: input.CreatorUUID,
	})
	for _, f := range friendUUIDs {
		aud.Tokens = append(aud.Tokens, &model.UpdateVisibility{
			Token:       VisibilityToken(model.ChannelFriend, f),
			ChannelType: model.ChannelFriend,
			ChannelUuid: f,
		})
	}
	for _, g := range groupUUIDs {
		aud.Tokens = append(aud.Tokens, &model.UpdateVisibility{
			Token:       VisibilityToken(model.ChannelGroup, g),
			ChannelType: model.ChannelGroup,
			ChannelUuid: g,
		})
	}

	return aud
}

// dedupe 去重并剔除 exclude（保持顺序）
func dedupe(list []string, exclude string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if v == "" || v == exclude {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// mergeDedupe 在 base 基础上并入 extra（去重、剔除 exclude）
func mergeDedupe(base, extra []string, exclude string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	out := base
	for _, v := range extra {
		if v == "" || v == exclude {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
