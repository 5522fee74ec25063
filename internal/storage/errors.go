package storage

import (
	"errors"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
)

var (
	missingKeyCodes    = []string{"nosuchkey", "notfound"}
	missingKeyPhrases  = []string{"nosuchkey", "specified key does not exist", "not found"}
	missingBucketCodes = []string{"nosuchbucket"}
	missingBucketText  = []string{"nosuchbucket", "specified bucket does not exist"}
)

// IsNoSuchKey 判断错误是否表示导出对象不存在。
func IsNoSuchKey(err error) bool {
	return classify(err, missingKeyCodes, missingKeyPhrases)
}

// IsNoSuchBucket 判断错误是否表示归档 bucket 不存在。
func IsNoSuchBucket(err error) bool {
	return classify(err, missingBucketCodes, missingBucketText)
}

// classify 先看 S3 错误码，再退回到错误文本匹配；
// 网关或代理有时只留下字符串形式的错误。
func classify(err error, codes, phrases []string) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && slices.Contains(codes, strings.ToLower(strings.TrimSpace(resp.Code))) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return slices.ContainsFunc(phrases, func(p string) bool {
		return strings.Contains(lower, p)
	})
}
