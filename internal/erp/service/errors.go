package service

import "errors"

// 服务层哨兵错误，handler 据此映射HTTP状态码
var (
	// ErrInvalidArgument 入参不合法（数量非正、月份格式错误等）
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound 品目不存在、未启用或没有BOM定义
	ErrNotFound = errors.New("not found")
)
