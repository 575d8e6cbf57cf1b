package kubernetes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/coffeeshop/frontend-environment/internal/environment"
)

func decodeEnvironment(t *testing.T, cm *corev1.ConfigMap) environment.Environment {
	t.Helper()
	raw, ok := cm.Data[ConfigMapKey]
	require.True(t, ok, "configmap is missing %s", ConfigMapKey)

	var env environment.Environment
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return env
}

func TestBuildConfigMap(t *testing.T) {
	cm, err := BuildConfigMap("cafe", "frontend-environment", environment.Current())
	require.NoError(t, err)

	assert.Equal(t, "cafe", cm.Namespace)
	assert.Equal(t, "frontend-environment", cm.Name)
	assert.Equal(t, ManagedByValue, cm.Labels[ManagedByLabel])
	assert.Len(t, cm.Data, 1)
	assert.Equal(t, environment.Current(), decodeEnvironment(t, cm))
}

func TestApplyEnvironment_Creates(t *testing.T) {
	ctx := context.Background()
	cl := fake.NewClientBuilder().Build()
	c := NewClientFromClient(cl)

	created, err := c.ApplyEnvironment(ctx, "cafe", "frontend-environment", environment.Current())
	require.NoError(t, err)
	assert.True(t, created)

	got := &corev1.ConfigMap{}
	require.NoError(t, cl.Get(ctx, types.NamespacedName{Namespace: "cafe", Name: "frontend-environment"}, got))
	assert.Equal(t, environment.Current(), decodeEnvironment(t, got))
	assert.Equal(t, ManagedByValue, got.Labels[ManagedByLabel])
}

func TestApplyEnvironment_UpdatesExisting(t *testing.T) {
	ctx := context.Background()
	existing := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: "cafe",
			Name:      "frontend-environment",
			Labels:    map[string]string{"team": "frontend"},
		},
		Data: map[string]string{
			ConfigMapKey: `{"production":true}`,
			"other.txt":  "kept",
		},
	}
	cl := fake.NewClientBuilder().WithObjects(existing).Build()
	c := NewClientFromClient(cl)

	created, err := c.ApplyEnvironment(ctx, "cafe", "frontend-environment", environment.Current())
	require.NoError(t, err)
	assert.False(t, created)

	got := &corev1.ConfigMap{}
	require.NoError(t, cl.Get(ctx, types.NamespacedName{Namespace: "cafe", Name: "frontend-environment"}, got))
	assert.Equal(t, environment.Current(), decodeEnvironment(t, got))
	assert.Equal(t, "kept", got.Data["other.txt"])
	assert.Equal(t, "frontend", got.Labels["team"])
	assert.Equal(t, ManagedByValue, got.Labels[ManagedByLabel])
}

func TestApplyEnvironment_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := NewClientFromClient(fake.NewClientBuilder().Build())

	created, err := c.ApplyEnvironment(ctx, "default", "env", environment.Current())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.ApplyEnvironment(ctx, "default", "env", environment.Current())
	require.NoError(t, err)
	assert.False(t, created)
}
