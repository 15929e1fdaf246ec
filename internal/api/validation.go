package api

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)
	registerOnce    sync.Once
)

const maxPasswordBytes = 72

func validUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// bcrypt 只接受 72 字节以内，validator 的 max 按字符计
func validPassword(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

// RegisterValidators 在 gin 的 validator 上注册自定义规则
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("username", validUsername); err != nil {
			return
		}
		err = v.RegisterValidation("password", validPassword)
	})
	return err
}
