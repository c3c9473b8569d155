package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// Register 向 gin 的校验引擎注册自定义规则，启动时调用一次
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("validator: unexpected gin validator engine")
			return
		}
		err = v.RegisterValidation("notblank", notBlank)
	})
	return err
}

// notBlank 去除空白后非空
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Message 将绑定错误转换为给客户端的提示
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "요청 형식이 올바르지 않습니다."
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s은(는) 필수입니다.", field)
	case "email":
		return "올바른 이메일 형식이 아닙니다."
	case "min", "max":
		return fmt.Sprintf("%s의 길이 또는 값이 허용 범위를 벗어났습니다.", field)
	case "oneof":
		return fmt.Sprintf("%s은(는) %s 중 하나여야 합니다.", field, fe.Param())
	default:
		return fmt.Sprintf("%s 값이 올바르지 않습니다.", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
