package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/config"
	"lotellar.backend/internal/interfaces/http/response"
)

// PublicConfig is the client-facing subset of the configuration
type PublicConfig struct {
	AppName                string  `json:"appName"`
	Version                string  `json:"version"`
	Network                string  `json:"network"`
	NetworkPassphrase      string  `json:"networkPassphrase"`
	SorobanRPCURL          string  `json:"sorobanRpcUrl"`
	HorizonURL             string  `json:"horizonUrl"`
	ExplorerURL            string  `json:"explorerUrl"`
	LotteryContractID      string  `json:"lotteryContractId"`
	NativeTokenAddress     string  `json:"nativeTokenAddress"`
	PlatformFeePercentage  float64 `json:"platformFeePercentage"`
	DefaultLotteryDuration uint64  `json:"defaultLotteryDuration"`
	MinParticipants        int     `json:"minParticipants"`
	MaxParticipants        int     `json:"maxParticipants"`
}

type ConfigHandler struct {
	public PublicConfig
}

// NewConfigHandler snapshots the public values once; config does not change at runtime
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{public: PublicConfig{
		AppName:                cfg.App.Name,
		Version:                cfg.App.Version,
		Network:                cfg.Stellar.Network,
		NetworkPassphrase:      cfg.Stellar.NetworkPassphrase,
		SorobanRPCURL:          cfg.Stellar.SorobanRPCURL,
		HorizonURL:             cfg.Stellar.HorizonURL,
		ExplorerURL:            cfg.Stellar.ExplorerURL,
		LotteryContractID:      cfg.Contracts.LotteryContractID,
		NativeTokenAddress:     cfg.Contracts.NativeTokenAddress,
		PlatformFeePercentage:  cfg.Platform.FeePercentage,
		DefaultLotteryDuration: cfg.App.DefaultLotteryDuration,
		MinParticipants:        cfg.App.MinParticipants,
		MaxParticipants:        cfg.App.MaxParticipants,
	}}
}

// GET /api/v1/config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	response.Success(c, http.StatusOK, h.public)
}
