package handlers

import (
	"net/http"
	"os"
	"strings"

	presalesolana "presalecontrol/pkg/solana"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// GenerateOperatorKeysRequest represents the request body for generating
// custodial signing keys
type GenerateOperatorKeysRequest struct {
	Count int `json:"count" binding:"required,min=1,max=100"`
}

// GenerateOperatorKeys generates custodial keypairs for the settlement
// service's on-chain operations and stores them encrypted in the keystore.
// The private keys never leave the keystore directory.
func GenerateOperatorKeys(c *gin.Context) {
	var request GenerateOperatorKeysRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	password := os.Getenv("KEYSTORE_PASSWORD")
	if password == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "KEYSTORE_PASSWORD not configured"})
		return
	}

	km := presalesolana.NewKeyManager()
	addresses := make([]string, 0, request.Count)

	for i := 0; i < request.Count; i++ {
		account, err := km.GenerateKeyPair()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := km.SaveKeyStoreEntry(account, password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		addresses = append(addresses, account.PublicKey.ToBase58())
	}

	log.WithField("count", len(addresses)).Info("operator keys generated")

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Successfully generated operator keys",
		"addresses": addresses,
	})
}

// ListOperatorKeys returns the addresses present in the keystore
func ListOperatorKeys(c *gin.Context) {
	entries, err := os.ReadDir(presalesolana.KeystoreDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, []string{})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var addresses []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		addresses = append(addresses, strings.TrimSuffix(entry.Name(), ".json"))
	}
	c.JSON(http.StatusOK, addresses)
}
