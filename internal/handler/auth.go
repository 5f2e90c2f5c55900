package handler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/protocol"
)

// HandleLogin validates credentials, binds the account, and returns the
// character list. The repo enforces the failure lockout and back-off.
func HandleLogin(s *gateway.Session, raw []byte, deps *Deps) {
	fail := func(msg string) {
		s.SendJSON(&protocol.LoginResponse{Type: protocol.SLoginResponse, Success: false, Message: msg})
	}

	if deps.Degraded {
		fail("伺服器維護中，暫停登入")
		return
	}

	var req protocol.LoginRequest
	if err := protocol.Decode(raw, &req); err != nil {
		fail("請求格式錯誤")
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))

	ctx, cancel := opCtx()
	defer cancel()

	accountID, err := deps.Accounts.ValidateLogin(ctx, username, req.Password)
	if err != nil || accountID == 0 {
		deps.Log.Info("登入失敗",
			zap.String("account", username),
			zap.String("ip", s.IP),
		)
		fail("帳號或密碼錯誤")
		return
	}

	chars, err := deps.Chars.List(ctx, accountID)
	if err != nil {
		deps.Log.Error("讀取角色列表失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}

	s.AccountID.Store(accountID)
	s.SetState(gateway.StateCharacterSelect)

	data := &protocol.LoginResponseData{AccountID: accountID}
	for _, c := range chars {
		data.Characters = append(data.Characters, protocol.CharacterSummary{
			ID: c.ID, Name: c.Name, Race: c.Race, Class: c.Class,
			Level: c.Level, IsDead: c.IsDead,
		})
	}
	s.SendJSON(&protocol.LoginResponse{
		Type:    protocol.SLoginResponse,
		Success: true,
		Data:    data,
	})

	deps.Log.Info("帳號登入",
		zap.String("account", username),
		zap.Int64("accountID", accountID),
		zap.String("ip", s.IP),
	)
}

// HandleRegister creates a new account after the password policy check.
func HandleRegister(s *gateway.Session, raw []byte, deps *Deps) {
	fail := func(msg string) {
		s.SendJSON(&protocol.RegisterResponse{Type: protocol.SRegisterResponse, Success: false, Message: msg})
	}

	if deps.Degraded {
		fail("伺服器維護中，暫停註冊")
		return
	}

	var req protocol.RegisterRequest
	if err := protocol.Decode(raw, &req); err != nil {
		fail("請求格式錯誤")
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))

	ctx, cancel := opCtx()
	defer cancel()

	ok, reason, err := deps.Accounts.Create(ctx, username, req.Password)
	if err != nil {
		deps.Log.Error("建立帳號失敗", zap.Error(err))
		fail("伺服器錯誤，請稍後再試")
		return
	}
	if !ok {
		fail(reason)
		return
	}

	s.SendJSON(&protocol.RegisterResponse{Type: protocol.SRegisterResponse, Success: true})
	deps.Log.Info("帳號註冊", zap.String("account", username), zap.String("ip", s.IP))
}
