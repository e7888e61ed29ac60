package internal

// Credentials is the Cytomine API key pair of a user
type Credentials struct {
	PublicKey  string `json:"publicKey" yaml:"publicKey"`
	PrivateKey string `json:"privateKey" yaml:"privateKey"`
}

// IsEmpty reports whether either key is missing
func (c Credentials) IsEmpty() bool {
	return c.PublicKey == "" || c.PrivateKey == ""
}

// KeyStore reads and writes the credential pair in local storage
type KeyStore struct {
	storage Storage
}

// NewKeyStore creates a KeyStore on top of storage
func NewKeyStore(storage Storage) *KeyStore {
	return &KeyStore{storage: storage}
}

// Keys returns the stored credentials. Missing keys are empty strings.
func (ks *KeyStore) Keys() (Credentials, error) {
	pub, _, err := ks.storage.GetItem(PublicKeyItem)
	if err != nil {
		return Credentials{}, err
	}
	priv, _, err := ks.storage.GetItem(PrivateKeyItem)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{PublicKey: pub, PrivateKey: priv}, nil
}

// SetKeys stores both keys as given
func (ks *KeyStore) SetKeys(publicKey, privateKey string) error {
	if err := ks.storage.SetItem(PublicKeyItem, publicKey); err != nil {
		return err
	}
	return ks.storage.SetItem(PrivateKeyItem, privateKey)
}

// ClearKeys removes both keys and the cached session, which belongs to the
// user the keys identified
func (ks *KeyStore) ClearKeys() error {
	for _, key := range []string{PublicKeyItem, PrivateKeyItem, SessionItem} {
		if err := ks.storage.RemoveItem(key); err != nil {
			return err
		}
	}
	LogDebug("Cleared keys and cached session")
	return nil
}
